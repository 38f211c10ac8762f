package errors

import "errors"

var (
	ErrFlightNotFound = errors.New("flight not found")

	ErrBookingNotFound = errors.New("flight booking not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrStatusChanged = errors.New("flight booking status changed concurrently")
)
