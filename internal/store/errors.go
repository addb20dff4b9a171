// Package store defines sentinel errors shared by store implementations.
package store

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateKey is returned when an insert violates a unique key.
	ErrDuplicateKey = errors.New("store: duplicate key")

	// ErrInvalidInput is returned when a write is missing required fields.
	ErrInvalidInput = errors.New("store: invalid input")
)
