package testutil

import (
	"sync"
	"time"
)

// DefaultEpoch is the first instant returned by a clock built with a zero start.
var DefaultEpoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// DeterministicClock is a stepping wall clock for tests.
//
// Each call to Now returns the previous instant plus the step, so the same
// scenario always stamps its witnesses with the same timestamps and
// produces byte-identical records and hashes.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	calls int64
}

// NewDeterministicClock creates a clock whose first reading is start.
// A zero start means DefaultEpoch; a zero step means one second.
func NewDeterministicClock(start time.Time, step time.Duration) *DeterministicClock {
	if start.IsZero() {
		start = DefaultEpoch
	}
	if step == 0 {
		step = time.Second
	}
	return &DeterministicClock{start: start.UTC(), step: step}
}

// Now returns the next instant and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Calls returns how many times Now has been called.
func (c *DeterministicClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset rewinds the clock so the next Now returns start again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}
