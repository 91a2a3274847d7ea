// Package queue provides bounded FIFO queues for coordinating producer and
// consumer goroutines.
package queue

import "time"

// Queue is a generic interface for non-blocking FIFO queues.
type Queue[T any] interface {
	// Enqueue adds an item to the queue.
	// Returns true if successful, false if the queue is full.
	Enqueue(item T) bool

	// Dequeue removes and returns an item from the queue.
	// Returns (item, true) if successful, (zero, false) if the queue is empty.
	Dequeue() (T, bool)

	// Capacity returns the total capacity of the queue.
	Capacity() int
}

// BlockingQueue is a Queue whose producers wait for space and whose consumers
// wait for items.
type BlockingQueue[T any] interface {
	Queue[T]

	// Put inserts item, waiting as long as needed for space.
	Put(item T) error

	// PutTimeout inserts item, giving up with ErrTimeout once timeout elapses.
	PutTimeout(item T, timeout time.Duration) error

	// Take removes the head item, waiting as long as needed for one to arrive.
	Take() (T, error)

	// TakeTimeout removes the head item or reports StatusTimedOut once timeout elapses.
	TakeTimeout(timeout time.Duration) Result[T]

	// Size returns the number of buffered items.
	Size() int

	// Clear drops every buffered item.
	Clear()
}
