// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"sync"
	"time"
)

type (
	// Clock abstracts time observation and delay for deterministic testing.
	// Production code uses RealClock; tests use FakeClock to walk a lock
	// file's age across the staleness boundary without real sleeps.
	Clock interface {
		// Now returns the current time.
		Now() time.Time

		// After returns a channel that receives the current time once d has
		// elapsed. For FakeClock the channel fires when Advance() or Set()
		// moves the clock past the deadline.
		After(d time.Duration) <-chan time.Time

		// Since returns the time elapsed since t.
		Since(t time.Time) time.Duration
	}

	// RealClock implements Clock on the system clock. This is the default
	// everywhere outside tests.
	RealClock struct{}

	// FakeClock implements Clock with manually controlled time. It never
	// advances on its own; tests drive it with Advance() and Set().
	FakeClock struct {
		mu      sync.Mutex
		current time.Time
		pending []pendingAfter
	}

	// pendingAfter tracks one outstanding After() channel.
	pendingAfter struct {
		deadline time.Time
		ch       chan time.Time
	}
)

// Now returns the current system time.
func (RealClock) Now() time.Time { return time.Now() }

// After returns a channel that receives the time after duration d.
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Since returns the time elapsed since t.
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// NewFakeClock creates a FakeClock initialized to initial, or to a fixed
// reference time when initial is zero so tests are reproducible by default.
func NewFakeClock(initial time.Time) *FakeClock {
	if initial.IsZero() {
		initial = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &FakeClock{current: initial}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After registers a channel that fires once the fake time reaches now+d.
// A non-positive d fires immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.current
		return ch
	}
	c.pending = append(c.pending, pendingAfter{deadline: c.current.Add(d), ch: ch})
	return ch
}

// Since returns the fake time elapsed since t.
func (c *FakeClock) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Sub(t)
}

// Advance moves the fake time forward by d, firing every After() channel
// whose deadline has been reached.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	c.fireDue()
}

// Set jumps the fake time to t, firing every After() channel whose deadline
// has been reached. Time may move backwards; pending deadlines are not
// re-armed.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
	c.fireDue()
}

// fireDue delivers to all due waiters. Caller holds mu.
func (c *FakeClock) fireDue() {
	remaining := c.pending[:0]
	for _, p := range c.pending {
		if !c.current.Before(p.deadline) {
			select {
			case p.ch <- c.current:
			default:
			}
		} else {
			remaining = append(remaining, p)
		}
	}
	c.pending = remaining
}
