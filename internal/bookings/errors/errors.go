package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStatusChanged means a conditional status update lost to a concurrent one.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)
