package search

import (
	"sync/atomic"
	"time"
)

// Timer is the cooperative time controller. The search polls
// ShouldStop at a fixed node cadence; nothing here blocks or makes a
// syscall beyond reading the clock.
type Timer struct {
	start   time.Time
	budget  time.Duration
	stopped atomic.Bool
}

// NewTimer starts a timer with the given budget. A zero budget means
// no time limit; the search then runs to its depth limit unless
// RequestStop is called.
func NewTimer(budget time.Duration) *Timer {
	return &Timer{start: time.Now(), budget: budget}
}

// ShouldStop reports whether the search should unwind now.
func (t *Timer) ShouldStop() bool {
	if t.stopped.Load() {
		return true
	}
	if t.budget > 0 && time.Since(t.start) >= t.budget {
		t.stopped.Store(true)
		return true
	}
	return false
}

// Remaining returns the unused budget, or zero when exhausted or
// unlimited.
func (t *Timer) Remaining() time.Duration {
	if t.budget <= 0 {
		return 0
	}
	r := t.budget - time.Since(t.start)
	if r < 0 {
		return 0
	}
	return r
}

// RequestStop asks every search thread to unwind at its next poll.
func (t *Timer) RequestStop() {
	t.stopped.Store(true)
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
