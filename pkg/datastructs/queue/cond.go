package queue

import (
	"context"
	"slices"
	"sync"
	"time"
)

// cond is a condition variable whose waits can be bounded by a timeout or a
// context, which sync.Cond cannot do. Every method must be called with L held.
//
// Waiters are parked on their own channel and woken in arrival order by
// signal. Arrival order is not a fairness guarantee: a goroutine that never
// waited can still take the lock before a woken waiter reacquires it.
type cond struct {
	L       sync.Locker
	waiters []chan struct{}
}

func newCond(l sync.Locker) *cond {
	return &cond{L: l}
}

// wait atomically unlocks L and suspends the caller until it is woken by
// signal or broadcast, timeout elapses, or ctx is done. A negative timeout
// means no timeout and a nil ctx is never done. L is locked again before wait
// returns. The result reports whether the caller was woken; like any condition
// variable wait the predicate must still be re-checked.
func (c *cond) wait(ctx context.Context, timeout time.Duration) bool {
	ch := make(chan struct{})
	c.waiters = append(c.waiters, ch)
	c.L.Unlock()

	var expired <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	var done <-chan struct{}
	if ctx != nil {
		done = ctx.Done()
	}

	woken := false
	select {
	case <-ch:
		woken = true
	case <-expired:
	case <-done:
	}

	c.L.Lock()
	if !woken && !c.forget(ch) {
		// signal already dequeued and closed ch while we were timing out.
		woken = true
	}
	return woken
}

// signal wakes the longest waiting goroutine, if any.
func (c *cond) signal() {
	if len(c.waiters) == 0 {
		return
	}
	ch := c.waiters[0]
	c.waiters[0] = nil
	c.waiters = c.waiters[1:]
	close(ch)
}

// broadcast wakes every waiting goroutine.
func (c *cond) broadcast() {
	for _, ch := range c.waiters {
		close(ch)
	}
	c.waiters = nil
}

// len returns the number of parked waiters.
func (c *cond) len() int {
	return len(c.waiters)
}

// forget removes ch from the wait list and reports whether it was still there.
func (c *cond) forget(ch chan struct{}) bool {
	i := slices.Index(c.waiters, ch)
	if i < 0 {
		return false
	}
	c.waiters = slices.Delete(c.waiters, i, i+1)
	return true
}
