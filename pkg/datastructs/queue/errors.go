package queue

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is the root of every argument validation failure.
	ErrInvalidArgument = errors.New("queue: invalid argument")

	// ErrInvalidCapacity is returned by NewBlocking for a non-positive capacity.
	ErrInvalidCapacity = errors.Wrap(ErrInvalidArgument, "capacity must be positive")

	// ErrNilItem is returned when a nil item is inserted into a queue built WithRejectNil.
	ErrNilItem = errors.Wrap(ErrInvalidArgument, "nil item")

	// ErrTimeout is returned when an insert or remove could not complete before its deadline.
	// The queue is left unchanged; the caller decides whether to retry.
	ErrTimeout = errors.New("queue: operation timed out")

	// ErrClosed is returned once the queue has been closed.
	ErrClosed = errors.New("queue: closed")
)

// IsTimeout reports whether err is a timeout signal rather than a failure.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
