package batcher

import (
	"context"
	"time"

	"github.com/huynhanx03/go-blockingqueue/pkg/datastructs/queue"
)

// Consumer is the interface that must be implemented by users of the Drainer.
// It is responsible for processing a batch of items.
type Consumer[T any] interface {
	// Consume processes a batch of items. The batch is owned by the consumer.
	// Returns an error if processing fails.
	Consume(ctx context.Context, batch []T) error
}

// ConsumerFunc adapts a plain function to Consumer.
type ConsumerFunc[T any] func(ctx context.Context, batch []T) error

func (f ConsumerFunc[T]) Consume(ctx context.Context, batch []T) error { return f(ctx, batch) }

// Source is a queue the Drainer can poll. *queue.Blocking satisfies it.
type Source[T any] interface {
	Poll(timeout time.Duration) queue.Result[T]
}

// Config holds configuration for the Drainer.
type Config struct {
	// BatchSize is the number of items that triggers a flush.
	BatchSize int

	// FlushInterval bounds how long the first item of a batch waits before
	// the batch is flushed regardless of size. Zero flushes on size only.
	FlushInterval time.Duration
}
