package repository

import "errors"

var (
	// ErrNotFound is returned by point lookups when no record exists for the key.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an insert hits an existing key or a
	// conditional update observes a stale concurrency token.
	ErrConflict = errors.New("concurrent modification conflict")
)
