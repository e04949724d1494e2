package store

import "errors"

var (
	ErrNotFound        = errors.New("store: record not found")
	ErrUniqueViolation = errors.New("store: duplicate key value violates unique constraint")
	ErrInvalidInput    = errors.New("store: invalid input")

	// Optimistic concurrency: the row changed since it was read.
	ErrVersionConflict = errors.New("store: row version conflict")
)
