package workload

import (
	"time"

	"go.uber.org/zap"

	"github.com/huynhanx03/go-blockingqueue/pkg/datastructs/queue"
	"github.com/huynhanx03/go-blockingqueue/pkg/mq/batcher"
)

// Report summarizes a finished run.
type Report struct {
	Produced     int
	Consumed     int // distinct ids
	Duplicates   int
	PutRetries   int64
	TakeTimeouts int64

	// Sink side, zero without WithSink.
	Batches   uint64
	Forwarded uint64

	Queue   queue.Stats
	Elapsed time.Duration
}

func (r *Runner) report(elapsed time.Duration, drainer *batcher.Drainer[Item]) Report {
	rep := Report{
		Produced:     int(r.produced.Load()),
		Consumed:     r.ledger.Len(),
		Duplicates:   r.ledger.Duplicates(),
		PutRetries:   r.putRetries.Load(),
		TakeTimeouts: r.takeTimeouts.Load(),
		Queue:        r.q.Stats(),
		Elapsed:      elapsed,
	}
	if drainer != nil {
		rep.Batches, rep.Forwarded = drainer.Flushed()
	}
	return rep
}

// Fields renders the report as structured log fields.
func (r Report) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("produced", r.Produced),
		zap.Int("consumed", r.Consumed),
		zap.Int("duplicates", r.Duplicates),
		zap.Int64("put_retries", r.PutRetries),
		zap.Int64("take_timeouts", r.TakeTimeouts),
		zap.Uint64("batches", r.Batches),
		zap.Uint64("forwarded", r.Forwarded),
		zap.Uint64("queue_puts", r.Queue.Puts),
		zap.Uint64("queue_takes", r.Queue.Takes),
		zap.Duration("elapsed", r.Elapsed),
	}
}
