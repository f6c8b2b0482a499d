package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	// ErrBackpressure means a job was refused because the queue is full or closed.
	ErrBackpressure = errors.New("generation queue is full")
)
