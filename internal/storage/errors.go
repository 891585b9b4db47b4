// Package storage holds the errors shared by the storage backends.
package storage

import "errors"

var (
	// ErrNotFound is returned when a resource is not found or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional write loses to a concurrent writer.
	ErrConflict = errors.New("version conflict")
	// ErrDuplicate is returned when a unique name is already taken.
	ErrDuplicate = errors.New("duplicate")
)
