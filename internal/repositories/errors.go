package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleStatus is returned when a guarded status update finds the row in another state.
	ErrStaleStatus = errors.New("order status changed concurrently")
)
