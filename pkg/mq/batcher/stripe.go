package batcher

import "context"

// stripe accumulates one batch.
// It is NOT thread-safe and is owned by a single Drainer.
type stripe[T any] struct {
	cons Consumer[T]
	data []T
	cap  int
}

// newStripe creates a new stripe with the given consumer and capacity.
func newStripe[T any](cons Consumer[T], capacity int) *stripe[T] {
	return &stripe[T]{
		cons: cons,
		data: make([]T, 0, capacity),
		cap:  capacity,
	}
}

// push appends an item and reports whether the stripe is now full.
func (s *stripe[T]) push(item T) bool {
	s.data = append(s.data, item)
	return len(s.data) >= s.cap
}

func (s *stripe[T]) len() int { return len(s.data) }

// flush hands the buffered items to the consumer.
// A new slice is allocated so the consumer owns the passed data safely.
func (s *stripe[T]) flush(ctx context.Context) (int, error) {
	n := len(s.data)
	if n == 0 {
		return 0, nil
	}
	batch := s.data
	s.data = make([]T, 0, s.cap)
	return n, s.cons.Consume(ctx, batch)
}
