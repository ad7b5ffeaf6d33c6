package uptime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	name  string
	err   error
	calls *[]string
	got   []Notification
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Notify(_ context.Context, n Notification) error {
	*s.calls = append(*s.calls, s.name)
	s.got = append(s.got, n)
	return s.err
}

func TestReporter_FansOutInRegistrationOrder(t *testing.T) {
	var calls []string
	mail := &recordingSink{name: "mail", calls: &calls}
	sms := &recordingSink{name: "sms", calls: &calls}
	r := NewReporter(Endpoint{Name: "api"}, NewEngine(newFakeClock()), nil, mail, sms)

	assert.False(t, r.Report(context.Background(), outcome(Healthy(), 0)))
	assert.Empty(t, calls)

	assert.True(t, r.Report(context.Background(), outcome(HTTPError(500), 0)))
	assert.Equal(t, []string{"mail", "sms"}, calls)

	require.Len(t, mail.got, 1)
	require.Len(t, sms.got, 1)
	assert.Equal(t, mail.got[0].ID, sms.got[0].ID, "one notification per decision")
	assert.NotEmpty(t, mail.got[0].ID)
	assert.Equal(t, "api", mail.got[0].Endpoint.Name)

	assert.False(t, r.Report(context.Background(), outcome(HTTPError(500), 0)))
	assert.Len(t, calls, 2)
}

func TestReporter_FailingSinkDoesNotStopOthers(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	var calls []string
	sms := &recordingSink{name: "sms", err: errors.New("gateway down"), calls: &calls}
	panicky := SinkFunc{SinkName: "panicky", Fn: func(context.Context, Notification) error {
		calls = append(calls, "panicky")
		panic("boom")
	}}
	mail := &recordingSink{name: "mail", calls: &calls}
	r := NewReporter(Endpoint{Name: "api"}, NewEngine(newFakeClock()), zap.New(core), sms, panicky, mail)

	assert.NotPanics(t, func() {
		assert.True(t, r.Report(context.Background(), outcome(ConnectionRefused(), 0)))
	})
	assert.Equal(t, []string{"sms", "panicky", "mail"}, calls)
	assert.Len(t, mail.got, 1)

	assert.Equal(t, 2, logs.FilterMessage("Sink failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Notification partially delivered").Len())
}

func TestReporter_DeferredTimeout(t *testing.T) {
	clk := newFakeClock()
	var calls []string
	sink := &recordingSink{name: "mail", calls: &calls}
	r := NewReporter(Endpoint{Name: "api"}, NewEngine(clk), nil, sink)

	for i := 0; i < 3; i++ {
		clk.Advance(time.Second)
		r.Report(context.Background(), outcome(Timeout(), time.Second))
	}
	require.Len(t, sink.got, 1)
	assert.Equal(t, Timeout(), sink.got[0].Outcome.Kind)
	assert.Equal(t, clk.Now(), sink.got[0].At)
	assert.Equal(t, Timeout(), r.Current())
}

func TestNewReporter_NilEngine(t *testing.T) {
	var calls []string
	sink := &recordingSink{name: "mail", calls: &calls}

	var r *Reporter
	require.NotPanics(t, func() { r = NewReporter(Endpoint{Name: "api"}, nil, nil, sink) })
	assert.True(t, r.Report(context.Background(), outcome(HTTPError(500), 0)))
	assert.Equal(t, []string{"mail"}, calls)
}
