package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a deterministic Clock pinned to initial. Time moves only
// when Advance is called; due AfterFunc callbacks then run synchronously
// in deadline order. Safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a Clock for tests. Do not call Advance from inside an
// AfterFunc callback; that would deadlock.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeTimer
}

type fakeTimer struct {
	clk      *FakeClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// AfterFunc registers fn to run when the clock advances past d from now.
func (c *FakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clk: c, deadline: c.current.Add(d), fn: fn}
	c.waiters = append(c.waiters, t)
	return t
}

// Advance moves the clock forward by d, firing every pending timer whose
// deadline has passed, in deadline order. Callbacks run with no clock
// lock held, so they may schedule or stop other timers.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	for {
		due := c.takeNextDueLocked()
		if due == nil {
			break
		}
		c.mu.Unlock()
		due.fn()
		c.mu.Lock()
	}
	c.mu.Unlock()
}

// takeNextDueLocked marks and returns the earliest unfired, unstopped
// waiter at or before the current time, or nil.
func (c *FakeClock) takeNextDueLocked() *fakeTimer {
	var pending []*fakeTimer
	for _, w := range c.waiters {
		if !w.stopped && !w.fired && !w.deadline.After(c.current) {
			pending = append(pending, w)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].deadline.Before(pending[j].deadline) })
	pending[0].fired = true
	return pending[0]
}

// Stop cancels the timer if it has not fired yet.
func (t *fakeTimer) Stop() bool {
	t.clk.mu.Lock()
	defer t.clk.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
