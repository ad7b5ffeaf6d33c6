package uptime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SinkFunc adapts a function to the Sink interface.
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, n Notification) error
}

func (f SinkFunc) Name() string { return f.SinkName }

func (f SinkFunc) Notify(ctx context.Context, n Notification) error { return f.Fn(ctx, n) }

// LogSink writes notifications to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(l *zap.Logger) *LogSink {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogSink{logger: l}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Notify(_ context.Context, n Notification) error {
	fields := []zap.Field{
		zap.String("notification_id", n.ID),
		zap.String("site", n.Endpoint.Name),
		zap.String("url", n.Endpoint.URL),
		zap.Stringer("kind", n.Outcome.Kind),
		zap.String("message", n.Outcome.Message),
	}
	if n.Outcome.Kind.IsHealthy() {
		s.logger.Info(n.Outcome.Title, fields...)
	} else {
		s.logger.Warn(n.Outcome.Title, fields...)
	}
	return nil
}

// WriterSink prints the title and an indented message, one notification per block.
type WriterSink struct {
	name string
	mu   sync.Mutex
	w    io.Writer
}

func NewWriterSink(name string, w io.Writer) *WriterSink {
	if name == "" {
		name = "console"
	}
	return &WriterSink{name: name, w: w}
}

func (s *WriterSink) Name() string { return s.name }

func (s *WriterSink) Notify(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "%s\n    %s\n", n.Outcome.Title, n.Outcome.Message)
	return err
}

// WebhookSink POSTs each notification as JSON.
type WebhookSink struct {
	name   string
	url    string
	client *http.Client
}

func NewWebhookSink(name, url string, timeout time.Duration) *WebhookSink {
	if name == "" {
		name = "webhook"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookSink{name: name, url: url, client: &http.Client{Timeout: timeout}}
}

func (s *WebhookSink) Name() string { return s.name }

func (s *WebhookSink) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", n.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %s returned %d", s.url, resp.StatusCode)
	}
	return nil
}
