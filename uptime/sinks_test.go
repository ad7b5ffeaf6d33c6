package uptime

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleNotification(k Kind) Notification {
	return Notification{
		ID:       "n-1",
		Endpoint: Endpoint{ID: "e1", Name: "api", URL: "http://api"},
		Outcome:  Outcome{Kind: k, Title: "api is down", Message: "Error: 500"},
		At:       time.Unix(0, 0).UTC(),
	}
}

func TestWriterSink_Format(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink("", &buf)
	assert.Equal(t, "console", s.Name())

	require.NoError(t, s.Notify(context.Background(), sampleNotification(HTTPError(500))))
	assert.Equal(t, "api is down\n    Error: 500\n", buf.String())
}

func TestLogSink_Levels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := NewLogSink(zap.New(core))

	require.NoError(t, s.Notify(context.Background(), sampleNotification(HTTPError(500))))
	require.NoError(t, s.Notify(context.Background(), sampleNotification(Healthy())))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "n-1", entries[0].ContextMap()["notification_id"])
}

func TestWebhookSink_PostsJSON(t *testing.T) {
	var got Notification
	var key string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	s := NewWebhookSink("", ts.URL, time.Second)
	assert.Equal(t, "webhook", s.Name())
	require.NoError(t, s.Notify(context.Background(), sampleNotification(HTTPError(500))))
	assert.Equal(t, "n-1", key)
	assert.Equal(t, HTTPError(500), got.Outcome.Kind)
}

func TestWebhookSink_Non2xxIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	s := NewWebhookSink("ops", ts.URL, time.Second)
	err := s.Notify(context.Background(), sampleNotification(Timeout()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
