package uptime

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Sink is a notification output channel.
type Sink interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

// Reporter feeds outcomes for one endpoint through its debounce engine and
// fans notifications out to the registered sinks, in registration order.
type Reporter struct {
	endpoint Endpoint
	engine   *Engine
	sinks    []Sink
	clock    Clock
	logger   *zap.Logger
}

// NewReporter builds a Reporter. A nil engine gets a fresh one on the system clock.
func NewReporter(ep Endpoint, engine *Engine, logger *zap.Logger, sinks ...Sink) *Reporter {
	if engine == nil {
		engine = NewEngine(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		endpoint: ep,
		engine:   engine,
		sinks:    append([]Sink(nil), sinks...),
		clock:    engine.clock,
		logger:   logger,
	}
}

// Report decides whether o is worth notifying and, if so, invokes every sink.
// Sink failures are logged and never returned. It reports whether sinks were invoked.
func (r *Reporter) Report(ctx context.Context, o Outcome) bool {
	if !r.engine.Update(o) {
		return false
	}

	n := Notification{
		ID:       uuid.NewString(),
		Endpoint: r.endpoint,
		Outcome:  o,
		At:       r.clock.Now(),
	}

	var errs error
	for _, s := range r.sinks {
		if err := r.notify(ctx, s, n); err != nil {
			r.logger.Warn("Sink failed",
				zap.String("sink", s.Name()),
				zap.String("site", r.endpoint.Name),
				zap.Stringer("kind", o.Kind),
				zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	if errs != nil {
		r.logger.Error("Notification partially delivered",
			zap.String("notification_id", n.ID),
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Int("sinks", len(r.sinks)),
			zap.Error(errs))
	}
	return true
}

func (r *Reporter) notify(ctx context.Context, s Sink, n Notification) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sink panicked: %v", p)
		}
	}()
	return s.Notify(ctx, n)
}

// Current returns the most recently observed kind for the endpoint.
func (r *Reporter) Current() Kind { return r.engine.Current() }
