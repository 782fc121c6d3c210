package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	// ErrFull is returned when the queue is at capacity.
	ErrFull = errors.New("queue full")
	// ErrClosed is returned when enqueueing after Close.
	ErrClosed = errors.New("queue closed")
)
