package domain

import "errors"

var (
	// ErrNotFound reports a place id unknown to the source or store.
	ErrNotFound = errors.New("place not found")

	// ErrOutOfRange reports an indexed read outside [0, count).
	ErrOutOfRange = errors.New("index out of range")
)
