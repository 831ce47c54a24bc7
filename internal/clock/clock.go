// Package clock abstracts the source of current time so playback
// timestamps can be controlled in tests.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

// Now returns the current wall-clock time.
func (System) Now() time.Time {
	return time.Now()
}

// Fixed is a manually advanced clock for tests.
type Fixed struct {
	T time.Time
}

// NewFixed creates a fixed clock starting at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{T: t}
}

// Now returns the clock's current instant.
func (f *Fixed) Now() time.Time {
	return f.T
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}
