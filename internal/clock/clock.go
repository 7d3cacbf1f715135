// Package clock injects wall time into the services, so usedAt stamps and
// last-sync bookkeeping are testable against a pinned instant.
package clock

import "time"

// Clock is the single time source the services read.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns the wall clock. Instants are normalized to UTC, matching
// what goes on the wire and into the store.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed pins the clock to one instant, for tests.
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
