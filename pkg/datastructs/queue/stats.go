package queue

import "sync/atomic"

// Stats is a point-in-time snapshot of queue counters.
type Stats struct {
	Puts         uint64 // items inserted
	Takes        uint64 // items removed
	PutTimeouts  uint64 // inserts that gave up at their deadline
	TakeTimeouts uint64 // removes that gave up at their deadline
	Cleared      uint64 // items dropped by Clear
}

type counters struct {
	puts         atomic.Uint64
	takes        atomic.Uint64
	putTimeouts  atomic.Uint64
	takeTimeouts atomic.Uint64
	cleared      atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Puts:         c.puts.Load(),
		Takes:        c.takes.Load(),
		PutTimeouts:  c.putTimeouts.Load(),
		TakeTimeouts: c.takeTimeouts.Load(),
		Cleared:      c.cleared.Load(),
	}
}
