package queue

// Status is the outcome of a remove operation.
type Status uint8

const (
	// StatusDelivered means an item was removed from the queue.
	StatusDelivered Status = iota
	// StatusTimedOut means the deadline elapsed before an item arrived.
	StatusTimedOut
	// StatusClosed means the queue is closed and has been drained.
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusTimedOut:
		return "timed_out"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Result carries either a delivered item or the reason none was delivered.
// Any T is a legal payload, including nil values.
type Result[T any] struct {
	value  T
	status Status
}

func delivered[T any](v T) Result[T] {
	return Result[T]{value: v, status: StatusDelivered}
}

func failed[T any](status Status) Result[T] {
	return Result[T]{status: status}
}

// Value returns the delivered item and true, or the zero value and false.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.status == StatusDelivered
}

// Status returns the outcome.
func (r Result[T]) Status() Status { return r.status }

// Ok reports whether an item was delivered.
func (r Result[T]) Ok() bool { return r.status == StatusDelivered }

// TimedOut reports whether the deadline elapsed first.
func (r Result[T]) TimedOut() bool { return r.status == StatusTimedOut }

// Closed reports whether the queue was closed and empty.
func (r Result[T]) Closed() bool { return r.status == StatusClosed }

// Err maps the outcome onto the package errors: nil, ErrTimeout or ErrClosed.
func (r Result[T]) Err() error {
	switch r.status {
	case StatusTimedOut:
		return ErrTimeout
	case StatusClosed:
		return ErrClosed
	default:
		return nil
	}
}
