package batcher

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/huynhanx03/go-blockingqueue/pkg/datastructs/queue"
)

const (
	defaultBatchSize = 512

	// pollSlice caps a single Poll so cancellation is noticed promptly.
	pollSlice = 50 * time.Millisecond
)

// Drainer moves items from a Source to a Consumer in batches.
//
// Behavior:
//   - A batch is flushed when it reaches BatchSize items, or when
//     FlushInterval has passed since its first item arrived.
//   - When the source is closed and drained, or ctx is cancelled, the partial
//     batch is flushed and Run returns.
//   - A Consume error stops the Drainer; the failed batch is not retried.
type Drainer[T any] struct {
	src  Source[T]
	cons Consumer[T]
	cfg  Config

	batches atomic.Uint64
	items   atomic.Uint64
}

// NewDrainer creates a Drainer for type T.
func NewDrainer[T any](src Source[T], cons Consumer[T], cfg Config) *Drainer[T] {
	// Default config
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval < 0 {
		cfg.FlushInterval = 0
	}

	return &Drainer[T]{
		src:  src,
		cons: cons,
		cfg:  cfg,
	}
}

// Run drains until the source closes or ctx is done. It returns nil in both
// cases unless a Consume call failed.
func (d *Drainer[T]) Run(ctx context.Context) error {
	s := newStripe[T](d.cons, d.cfg.BatchSize)
	var flushAt time.Time

	for {
		if ctx.Err() != nil {
			// The final flush must not inherit the cancellation.
			return d.flush(context.WithoutCancel(ctx), s)
		}

		wait := pollSlice
		if s.len() > 0 && d.cfg.FlushInterval > 0 {
			left := time.Until(flushAt)
			if left <= 0 {
				if err := d.flush(ctx, s); err != nil {
					return err
				}
				continue
			}
			wait = min(wait, left)
		}

		res := d.src.Poll(wait)
		switch res.Status() {
		case queue.StatusDelivered:
			item, _ := res.Value()
			if s.len() == 0 {
				flushAt = time.Now().Add(d.cfg.FlushInterval)
			}
			if s.push(item) {
				if err := d.flush(ctx, s); err != nil {
					return err
				}
			}
		case queue.StatusClosed:
			return d.flush(ctx, s)
		}
	}
}

func (d *Drainer[T]) flush(ctx context.Context, s *stripe[T]) error {
	n, err := s.flush(ctx)
	if n == 0 {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "consume batch of %d", n)
	}
	d.batches.Add(1)
	d.items.Add(uint64(n))
	return nil
}

// Flushed returns the number of batches and items successfully consumed.
func (d *Drainer[T]) Flushed() (batches, items uint64) {
	return d.batches.Load(), d.items.Load()
}
