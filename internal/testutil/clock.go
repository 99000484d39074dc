// Package testutil provides the deterministic wall clock and store
// fixtures shared by the engine tests.
package testutil

import (
	"sync"
	"time"
)

// WallClock is a thread-safe settable clock for tests. The generator and
// progression engine accept a now-func; injecting a WallClock pins "today"
// so day-offset rule checks become deterministic.
type WallClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewWallClock creates a clock pinned to t0.
func NewWallClock(t0 time.Time) *WallClock {
	return &WallClock{now: t0}
}

// Now returns the pinned instant.
func (c *WallClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward (or backward, with a negative d).
func (c *WallClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set pins the clock to a new instant.
func (c *WallClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// MustTime parses an RFC3339 timestamp, panicking on error. For fixture
// literals only.
func MustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
