package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a transaction could not be committed after
	// exhausting serialization retries.
	ErrConflict = errors.New("storage conflict")
)
