package storage

import "errors"

var (
	// ErrNotFound is returned when no snapshot exists for a fingerprint.
	ErrNotFound = errors.New("snapshot not found")

	// ErrClosed is returned when the store has been closed.
	ErrClosed = errors.New("snapshot store closed")
)
