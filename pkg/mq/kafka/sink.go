package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/huynhanx03/go-blockingqueue/pkg/mq/batcher"
)

// Sink publishes every item of a batch as one JSON message.
// It implements batcher.Consumer.
type Sink[T any] struct {
	producer sarama.SyncProducer
	topic    string
	key      func(T) string
}

// SinkOption configures a Sink.
type SinkOption[T any] func(*Sink[T])

// WithKey sets the partition key for each item. Without it messages carry no
// key and the partitioner picks.
func WithKey[T any](key func(T) string) SinkOption[T] {
	return func(s *Sink[T]) { s.key = key }
}

// NewSink creates a Sink writing to topic. The caller owns producer.
func NewSink[T any](producer sarama.SyncProducer, topic string, opts ...SinkOption[T]) *Sink[T] {
	s := &Sink[T]{
		producer: producer,
		topic:    topic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ batcher.Consumer[struct{}] = (*Sink[struct{}])(nil)

// Consume sends the batch with a single SendMessages call.
func (s *Sink[T]) Consume(ctx context.Context, batch []T) error {
	if len(batch) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*sarama.ProducerMessage, len(batch))
	for i, item := range batch {
		b, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		msg := &sarama.ProducerMessage{
			Topic: s.topic,
			Value: sarama.ByteEncoder(b),
		}
		if s.key != nil {
			msg.Key = sarama.StringEncoder(s.key(item))
		}
		msgs[i] = msg
	}

	if err := s.producer.SendMessages(msgs); err != nil {
		var perr sarama.ProducerErrors
		if errors.As(err, &perr) && len(perr) > 0 {
			return fmt.Errorf("%w: %d of %d failed: %v", ErrSend, len(perr), len(msgs), perr[0].Err)
		}
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}
