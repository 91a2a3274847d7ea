package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huynhanx03/go-blockingqueue/pkg/mq/batcher"
)

// ListSink appends batches to a Redis list as JSON documents.
// It implements batcher.Consumer.
type ListSink[T any] struct {
	engine *Engine
	key    string
	maxLen int64
}

// SinkOption configures a ListSink.
type SinkOption func(*sinkOptions)

type sinkOptions struct {
	maxLen int64
}

// WithMaxLen keeps only the newest n entries of the list after every push.
func WithMaxLen(n int64) SinkOption {
	return func(o *sinkOptions) { o.maxLen = n }
}

// NewListSink creates a sink pushing to key.
func NewListSink[T any](engine *Engine, key string, opts ...SinkOption) *ListSink[T] {
	var o sinkOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &ListSink[T]{
		engine: engine,
		key:    key,
		maxLen: o.maxLen,
	}
}

var _ batcher.Consumer[struct{}] = (*ListSink[struct{}])(nil)

// Consume RPUSHes the whole batch in one pipeline round trip.
func (s *ListSink[T]) Consume(ctx context.Context, batch []T) error {
	if len(batch) == 0 {
		return nil
	}

	values := make([]any, len(batch))
	for i, item := range batch {
		b, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		values[i] = b
	}

	pipe := s.engine.client.Pipeline()
	pipe.RPush(ctx, s.key, values...)
	if s.maxLen > 0 {
		pipe.LTrim(ctx, s.key, -s.maxLen, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPush, err)
	}
	return nil
}

// Items reads the whole list back, decoding every entry.
func (s *ListSink[T]) Items(ctx context.Context) ([]T, error) {
	raw, err := s.engine.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]T, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal([]byte(r), &out[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
	}
	return out, nil
}
