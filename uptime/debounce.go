package uptime

import "time"

type decision int

const (
	decisionNone decision = iota
	decisionPending
	decisionReady
)

func (d decision) String() string {
	switch d {
	case decisionPending:
		return "pending"
	case decisionReady:
		return "ready"
	default:
		return "none"
	}
}

// Engine decides, one outcome at a time, whether a status change is worth
// notifying. An Engine tracks a single target and must not be shared across
// targets or called concurrently.
type Engine struct {
	clock Clock

	current      Kind
	notified     Kind
	pendingSince time.Time
	decision     decision
}

// NewEngine returns an Engine whose initial status is healthy, so the first
// unhealthy outcome is treated as a change. A nil clock uses the system clock.
func NewEngine(clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	return &Engine{
		clock:    clock,
		current:  Healthy(),
		notified: Healthy(),
	}
}

// Update consumes the next outcome and reports whether it should be
// notified now. A true result is returned once per settled change.
func (e *Engine) Update(o Outcome) bool {
	now := e.clock.Now()

	switch {
	case o.Kind != e.current:
		wasPending := e.decision == decisionPending
		e.current = o.Kind
		e.pendingSince = now
		switch {
		case wasPending && o.Kind == e.notified:
			// Reverted inside the grace window: nothing was ever reported.
			e.decision = decisionNone
		case o.GraceDelay <= 0:
			e.decision = decisionReady
		default:
			e.decision = decisionPending
		}
	case e.decision == decisionPending:
		if now.After(e.pendingSince.Add(o.GraceDelay)) {
			e.decision = decisionReady
		}
	default:
		e.decision = decisionNone
	}

	if e.decision == decisionReady {
		e.notified = e.current
		return true
	}
	return false
}

// Current returns the most recently observed kind.
func (e *Engine) Current() Kind { return e.current }

// Pending reports whether a notification is owed but still inside its grace window.
func (e *Engine) Pending() bool { return e.decision == decisionPending }
