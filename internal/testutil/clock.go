package testutil

import (
	"sync"
	"time"
)

// StubClock returns a fixed time. Safe for concurrent use.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FixedChooser is a nutri.Chooser with scripted results. IntN always returns
// Index (clamped to n-1) and Float64 always returns Roll, so seeding keeps
// every meal slot when Roll is at or below the skip threshold.
type FixedChooser struct {
	Index int
	Roll  float64
}

func (c FixedChooser) IntN(n int) int {
	return min(c.Index, n-1)
}

func (c FixedChooser) Float64() float64 {
	return c.Roll
}
