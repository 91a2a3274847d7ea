package queue

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"

	pkgRuntime "github.com/huynhanx03/go-blockingqueue/pkg/runtime"
)

var (
	_ Queue[int]         = (*Blocking[int])(nil)
	_ BlockingQueue[int] = (*Blocking[int])(nil)
)

// noTimeout makes cond.wait block until woken.
const noTimeout time.Duration = -1

// Blocking is a bounded FIFO queue safe for concurrent producers and consumers.
//
// Inserts wait while the queue is full and removes wait while it is empty.
// All state is guarded by one mutex shared by the "not full" and "not empty"
// conditions. Waiting never spins: the mutex is released while parked.
//
// Waking follows notify-one semantics on insert and remove, and notify-all on
// Clear and Close. There is no starvation prevention: a woken waiter can lose
// the race for the lock to a goroutine that never waited and will then wait
// again.
type Blocking[T any] struct {
	mu       sync.Mutex
	notFull  *cond // signaled when an item is removed
	notEmpty *cond // signaled when an item is inserted
	buf      ring[T]
	capacity int
	closed   bool

	rejectNil bool
	stats     counters
}

// NewBlocking creates an empty queue holding at most capacity items.
// It fails with ErrInvalidCapacity when capacity is not positive.
func NewBlocking[T any](capacity int, opts ...Option) (*Blocking[T], error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "got %d", capacity)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	q := &Blocking[T]{
		buf:       newRing[T](capacity),
		capacity:  capacity,
		rejectNil: o.rejectNil,
	}
	q.notFull = newCond(&q.mu)
	q.notEmpty = newCond(&q.mu)
	return q, nil
}

// =============================================================================
// Insert
// =============================================================================

// Put appends item, waiting as long as the queue is full.
// It fails with ErrClosed once the queue is closed.
func (q *Blocking[T]) Put(item T) error {
	return q.put(nil, item, 0)
}

// PutTimeout appends item, waiting at most timeout for space.
// A non-positive timeout never waits. On ErrTimeout the queue is unchanged.
func (q *Blocking[T]) PutTimeout(item T, timeout time.Duration) error {
	return q.put(nil, item, deadlineAfter(timeout))
}

// PutContext appends item, waiting for space until ctx is done.
// It returns ctx.Err() when ctx ends first.
func (q *Blocking[T]) PutContext(ctx context.Context, item T) error {
	return q.put(ctx, item, 0)
}

// Offer is the best-effort insert: it behaves like PutTimeout and returns
// immediately when timeout is zero or negative.
func (q *Blocking[T]) Offer(item T, timeout time.Duration) error {
	return q.PutTimeout(item, timeout)
}

// Enqueue inserts item only if there is space right now.
func (q *Blocking[T]) Enqueue(item T) bool {
	return q.Offer(item, 0) == nil
}

func (q *Blocking[T]) put(ctx context.Context, item T, d deadline) error {
	if q.rejectNil && isNil(item) {
		return ErrNilItem
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && q.buf.full() {
		if err := q.park(ctx, q.notFull, d); err != nil {
			if err == ErrTimeout {
				q.stats.putTimeouts.Add(1)
			}
			return err
		}
	}
	if q.closed {
		return ErrClosed
	}

	q.buf.push(item)
	q.stats.puts.Add(1)
	q.notEmpty.signal()
	return nil
}

// =============================================================================
// Remove
// =============================================================================

// Take removes the head item, waiting as long as the queue is empty.
// Once the queue is closed, buffered items are still returned and ErrClosed
// is reported only when none remain.
func (q *Blocking[T]) Take() (T, error) {
	return q.take(nil, 0)
}

// TakeTimeout removes the head item, waiting at most timeout for one.
// A non-positive timeout never waits.
func (q *Blocking[T]) TakeTimeout(timeout time.Duration) Result[T] {
	return resultOf(q.take(nil, deadlineAfter(timeout)))
}

// TakeContext removes the head item, waiting until ctx is done.
// It returns ctx.Err() when ctx ends first.
func (q *Blocking[T]) TakeContext(ctx context.Context) (T, error) {
	return q.take(ctx, 0)
}

// Poll is the best-effort remove: it behaves like TakeTimeout and returns
// immediately when timeout is zero or negative.
func (q *Blocking[T]) Poll(timeout time.Duration) Result[T] {
	return q.TakeTimeout(timeout)
}

// Dequeue removes the head item only if one is available right now.
func (q *Blocking[T]) Dequeue() (T, bool) {
	return q.Poll(0).Value()
}

func (q *Blocking[T]) take(ctx context.Context, d deadline) (T, error) {
	var zero T

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.buf.empty() {
		if q.closed {
			return zero, ErrClosed
		}
		if err := q.park(ctx, q.notEmpty, d); err != nil {
			if err == ErrTimeout {
				q.stats.takeTimeouts.Add(1)
			}
			return zero, err
		}
	}

	item := q.buf.pop()
	q.stats.takes.Add(1)
	q.notFull.signal()
	return item, nil
}

// park waits once on c with whatever is left of d. The caller re-checks its
// predicate after every return.
func (q *Blocking[T]) park(ctx context.Context, c *cond, d deadline) error {
	timeout := noTimeout
	if d != 0 {
		timeout = d.remaining()
		if timeout <= 0 {
			return ErrTimeout
		}
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	c.wait(ctx, timeout)
	return nil
}

func resultOf[T any](item T, err error) Result[T] {
	switch err {
	case nil:
		return delivered(item)
	case ErrClosed:
		return failed[T](StatusClosed)
	default:
		return failed[T](StatusTimedOut)
	}
}

// =============================================================================
// Inspection
// =============================================================================
//
// The accessors below take the lock only for the read. Under concurrent use
// the value is stale as soon as it is returned, so never use it as a
// precondition for a following insert or remove.

// Size returns the number of buffered items.
func (q *Blocking[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.len()
}

// IsEmpty reports whether no items are buffered.
func (q *Blocking[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.empty()
}

// IsFull reports whether the queue holds capacity items.
func (q *Blocking[T]) IsFull() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.full()
}

// RemainingCapacity returns how many items can be inserted without waiting.
func (q *Blocking[T]) RemainingCapacity() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity - q.buf.len()
}

// Capacity returns the fixed bound set at construction.
func (q *Blocking[T]) Capacity() int { return q.capacity }

// IsClosed reports whether Close has been called.
func (q *Blocking[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Stats returns a snapshot of the queue counters.
func (q *Blocking[T]) Stats() Stats {
	return q.stats.snapshot()
}

// waiting returns the number of parked producers and consumers.
func (q *Blocking[T]) waiting() (producers, consumers int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.notFull.len(), q.notEmpty.len()
}

// =============================================================================
// Clear / Close
// =============================================================================

// Clear drops every buffered item and wakes all waiting producers.
// Waiting consumers are left parked since no item was produced.
func (q *Blocking[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stats.cleared.Add(uint64(q.buf.len()))
	q.buf.reset()
	q.notFull.broadcast()
}

// Close stops the queue from accepting items and wakes every waiter.
// Pending and later inserts fail with ErrClosed; removes drain what is left
// and then report ErrClosed. Close is idempotent.
func (q *Blocking[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.notFull.broadcast()
	q.notEmpty.broadcast()
}

// =============================================================================
// Deadlines
// =============================================================================

// deadline is an instant on the monotonic clock. Zero means no deadline.
type deadline int64

// deadlineAfter fixes the deadline once, on entry, so that every wait uses
// only what remains of timeout.
func deadlineAfter(timeout time.Duration) deadline {
	timeout = max(timeout, 0)
	now := pkgRuntime.NanoTime()
	if int64(timeout) > math.MaxInt64-now {
		return 0
	}
	return deadline(now + int64(timeout))
}

func (d deadline) remaining() time.Duration {
	return time.Duration(int64(d) - pkgRuntime.NanoTime())
}
