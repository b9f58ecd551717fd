package cycles

import (
	"fmt"
	"time"
)

// Guard decides whether a cycle accepts evaluation writes. It performs no
// I/O; callers hand it the cycle they loaded.
type Guard struct {
	now      func() time.Time
	location *time.Location
}

type GuardOption func(*Guard)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLocation sets the time zone in which "today" is evaluated.
func WithLocation(loc *time.Location) GuardOption {
	return func(g *Guard) {
		if loc != nil {
			g.location = loc
		}
	}
}

func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{now: time.Now, location: time.UTC}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Today returns the current calendar day in the guard's location.
func (g *Guard) Today() time.Time {
	now := g.now().In(g.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Validate checks only the date window. Start and end dates are inclusive.
func (g *Guard) Validate(c Cycle) Validation {
	today := g.Today()
	start := civilDate(c.StartDate)
	end := civilDate(c.EndDate)

	if today.Before(start) {
		return Validation{
			IsValid: false,
			Message: fmt.Sprintf("The evaluation period has not started yet. It opens on %s.", start.Format(dateLayout)),
		}
	}
	if today.After(end) {
		return Validation{
			IsValid: false,
			Message: fmt.Sprintf("The evaluation period has already ended. It closed on %s.", end.Format(dateLayout)),
		}
	}
	return Validation{IsValid: true}
}

// CheckWritable is the full write gate: the cycle must be open and today must
// fall inside its date window. It must run before anything is persisted.
func (g *Guard) CheckWritable(c Cycle) error {
	if c.Status != StatusOpen {
		return &ValidationError{Message: statusMessage(c.Status)}
	}
	if v := g.Validate(c); !v.IsValid {
		return &ValidationError{Message: v.Message}
	}
	return nil
}

func statusMessage(s Status) string {
	switch s {
	case StatusDraft:
		return "The evaluation cycle has not been opened yet."
	case StatusClosed:
		return "The evaluation cycle is closed."
	default:
		return fmt.Sprintf("The evaluation cycle status %q does not accept evaluations.", s)
	}
}

// civilDate drops the clock and zone of a stored DATE value.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CanTransition reports whether status may move from one value to another.
// Cycles only move forward: draft to open, open to closed.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusOpen
	case StatusOpen:
		return to == StatusClosed
	}
	return false
}
