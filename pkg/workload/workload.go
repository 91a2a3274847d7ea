// Package workload drives concurrent producers and consumers through a
// bounded blocking queue and checks that every item arrives exactly once.
package workload

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/huynhanx03/go-blockingqueue/pkg/datastructs/queue"
	"github.com/huynhanx03/go-blockingqueue/pkg/encoding"
	"github.com/huynhanx03/go-blockingqueue/pkg/mq/batcher"
	"github.com/huynhanx03/go-blockingqueue/pkg/unique"
)

const defaultHandoffCapacity = 64

var ErrIncomplete = errors.New("workload: consumed items do not match produced items")

// Item is the payload moved through the queue.
type Item struct {
	Producer int   `json:"producer"`
	Seq      int   `json:"seq"`
	ID       int64 `json:"id"`
}

// Ref is the id in compact base62 form, for logs.
func (it Item) Ref() string { return encoding.Base62Encode(it.ID) }

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithSink forwards every consumed item to cons. Consumers hand items to a
// second queue of the given capacity which a batcher.Drainer empties.
func WithSink(cons batcher.Consumer[Item], cfg batcher.Config, capacity int) Option {
	return func(r *Runner) {
		r.sink = cons
		r.sinkCfg = cfg
		r.handoffCap = capacity
	}
}

// Runner executes a single workload against a queue.
type Runner struct {
	cfg    Config
	q      *queue.Blocking[Item]
	gen    unique.Generator
	log    *zap.Logger
	ledger *Ledger

	sink       batcher.Consumer[Item]
	sinkCfg    batcher.Config
	handoffCap int

	produced     atomic.Int64
	putRetries   atomic.Int64
	takeTimeouts atomic.Int64
}

// New creates a Runner. gen tags every item with an id the ledger tracks.
func New(cfg Config, q *queue.Blocking[Item], gen unique.Generator, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg.withDefaults(),
		q:      q,
		gen:    gen,
		log:    zap.NewNop(),
		ledger: NewLedger(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.handoffCap <= 0 {
		r.handoffCap = defaultHandoffCapacity
	}
	return r
}

// Ledger exposes the ids consumed so far.
func (r *Runner) Ledger() *Ledger { return r.ledger }

// Run starts the producers and consumers and waits for them.
// q is closed once every producer has finished, so consumers drain what is
// left and stop. Run returns ErrIncomplete when the consumed set does not
// match what was produced.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	start := time.Now()

	var (
		handoff *queue.Blocking[Item]
		drainer *batcher.Drainer[Item]
	)
	if r.sink != nil {
		var err error
		handoff, err = queue.NewBlocking[Item](r.handoffCap)
		if err != nil {
			return Report{}, errors.Wrap(err, "create hand-off queue")
		}
		drainer = batcher.NewDrainer[Item](handoff, r.sink, r.sinkCfg)
	}

	r.log.Info("workload started",
		zap.Int("producers", r.cfg.Producers),
		zap.Int("consumers", r.cfg.Consumers),
		zap.Int("items_per_producer", r.cfg.ItemsPerProducer),
		zap.Int("capacity", r.q.Capacity()),
		zap.Bool("sink", drainer != nil),
	)

	g, gctx := errgroup.WithContext(ctx)

	pg, pctx := errgroup.WithContext(gctx)
	for i := range r.cfg.Producers {
		pg.Go(func() error { return r.produce(pctx, i) })
	}
	g.Go(func() error {
		defer r.q.Close()
		return pg.Wait()
	})

	cg, cctx := errgroup.WithContext(gctx)
	for i := range r.cfg.Consumers {
		cg.Go(func() error { return r.consume(cctx, i, handoff) })
	}
	g.Go(func() error {
		if handoff != nil {
			defer handoff.Close()
		}
		return cg.Wait()
	})

	if drainer != nil {
		g.Go(func() error { return drainer.Run(gctx) })
	}

	err := g.Wait()
	report := r.report(time.Since(start), drainer)
	if err != nil {
		r.log.Error("workload failed", zap.Error(err))
		return report, err
	}
	if report.Consumed != report.Produced || report.Duplicates > 0 {
		return report, errors.Wrapf(ErrIncomplete, "produced %d, consumed %d, duplicates %d",
			report.Produced, report.Consumed, report.Duplicates)
	}

	r.log.Info("workload finished", report.Fields()...)
	return report, nil
}

func (r *Runner) produce(ctx context.Context, producer int) error {
	for seq := range r.cfg.ItemsPerProducer {
		item := Item{Producer: producer, Seq: seq, ID: r.gen.Generate()}
		if err := r.put(ctx, item); err != nil {
			return errors.Wrapf(err, "producer %d", producer)
		}
		r.produced.Add(1)
		r.log.Debug("produced",
			zap.Int("producer", producer),
			zap.Int("seq", seq),
			zap.String("ref", item.Ref()),
			zap.Int("size", r.q.Size()),
		)

		if err := sleep(ctx, r.cfg.ProduceInterval); err != nil {
			return err
		}
	}
	return nil
}

// put retries timed-out inserts until the item is accepted or ctx ends.
func (r *Runner) put(ctx context.Context, item Item) error {
	for {
		var err error
		if r.cfg.PutTimeout < 0 {
			err = r.q.PutContext(ctx, item)
		} else {
			err = r.q.PutTimeout(item, r.cfg.PutTimeout)
		}
		if !queue.IsTimeout(err) {
			return err
		}

		r.putRetries.Add(1)
		r.log.Debug("put timed out, retrying",
			zap.Int("producer", item.Producer),
			zap.Int("seq", item.Seq),
		)
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.cfg.PutTimeout == 0 {
			// Zero timeout never parks; yield before the next attempt.
			if err := sleep(ctx, time.Millisecond); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) consume(ctx context.Context, consumer int, handoff *queue.Blocking[Item]) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := r.q.TakeTimeout(r.cfg.TakeTimeout)
		switch res.Status() {
		case queue.StatusTimedOut:
			r.takeTimeouts.Add(1)
			r.log.Debug("take timed out", zap.Int("consumer", consumer))
			continue
		case queue.StatusClosed:
			return nil
		}

		item, _ := res.Value()
		if !r.ledger.Record(item.ID) {
			r.log.Warn("duplicate item",
				zap.Int("consumer", consumer),
				zap.Int64("id", item.ID),
			)
		}
		r.log.Debug("consumed",
			zap.Int("consumer", consumer),
			zap.Int("producer", item.Producer),
			zap.Int("seq", item.Seq),
			zap.String("ref", item.Ref()),
		)

		if handoff != nil {
			if err := handoff.PutContext(ctx, item); err != nil {
				return errors.Wrapf(err, "consumer %d forward", consumer)
			}
		}

		if err := sleep(ctx, r.cfg.ConsumeInterval); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
