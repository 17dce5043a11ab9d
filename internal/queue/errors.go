package queue

import "errors"

var (
	// ErrEmpty is returned by head operations on an empty queue.
	ErrEmpty = errors.New("queue is empty")

	// ErrHeadMismatch is returned when the caller's view of the head is stale.
	ErrHeadMismatch = errors.New("queue head does not match")

	// ErrInvalidOperation wraps the validation error of a rejected enqueue.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrPersist wraps a durable store failure while reading or writing the
	// queue for a mutation.
	ErrPersist = errors.New("failed to persist queue")
)
