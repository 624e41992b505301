// Package clock supplies wall-clock time to the focus timer.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// System is the Clock backed by time.Now.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Manual is a Clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a Manual clock set to now.
func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

// Now returns the current manual time.
func (manual *Manual) Now() time.Time {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return manual.now
}

// Set moves the clock to now.
func (manual *Manual) Set(now time.Time) {
	manual.mu.Lock()
	manual.now = now
	manual.mu.Unlock()
}

// Advance moves the clock forward by delta.
func (manual *Manual) Advance(delta time.Duration) {
	manual.mu.Lock()
	manual.now = manual.now.Add(delta)
	manual.mu.Unlock()
}
