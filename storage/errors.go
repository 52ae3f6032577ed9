package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when no snapshot has been saved.
	ErrNotFound = errors.New("snapshot not found")
)
