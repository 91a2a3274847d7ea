package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a clock that can be stopped.
type Timer interface {
	Now() time.Time
	Stop()
}

var (
	_ Timer = (*CachedTimer)(nil)
	_ Timer = SystemTimer{}
)

// SystemTimer reads the wall clock on every call.
type SystemTimer struct{}

func (SystemTimer) Now() time.Time { return time.Now() }
func (SystemTimer) Stop()          {}

// CachedTimer serves a time value refreshed every step by a background
// goroutine, trading precision for a lock-free read on hot paths.
type CachedTimer struct {
	now    atomic.Value
	step   time.Duration
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func NewCachedTimer(step time.Duration) *CachedTimer {
	t := &CachedTimer{
		step:   step,
		ticker: time.NewTicker(step),
		done:   make(chan struct{}),
	}
	t.now.Store(time.Now())

	t.wg.Add(1)
	go t.run()

	return t
}

func (t *CachedTimer) run() {
	defer t.wg.Done()

	for {
		select {
		case now := <-t.ticker.C:
			t.now.Store(now)
		case <-t.done:
			t.ticker.Stop()
			return
		}
	}
}

func (t *CachedTimer) Now() time.Time {
	return t.now.Load().(time.Time)
}

// Stop halts the refresh goroutine. Now keeps returning the last value.
// Stop is safe to call more than once.
func (t *CachedTimer) Stop() {
	t.once.Do(func() {
		close(t.done)
	})
	t.wg.Wait()
}
