// Package service contains the booking engine: the validation,
// availability, pricing and cancellation rules that sit between the
// HTTP handlers and the repositories.
package service

import "errors"

// Rejection sentinels returned by the booking engine.  Handlers map
// them onto HTTP statuses with errors.Is: the first group is invalid
// input (400), the second is missing resources (404), ErrRoomUnavailable
// is a conflict (409) and the last group is an invalid state for the
// requested transition (422).  The sentinel is the machine-readable
// kind; the error text is only for humans.
var (
	ErrInvalidID        = errors.New("invalid identifier")
	ErrInvalidDates     = errors.New("invalid dates provided")
	ErrCheckInPast      = errors.New("check-in date cannot be in the past")
	ErrCheckOutNotAfter = errors.New("check-out date must be after check-in date")
	ErrNoAdults         = errors.New("at least one adult is required")
	ErrInvalidGuests    = errors.New("invalid guest count")
	ErrCapacityExceeded = errors.New("room capacity exceeded")

	ErrHotelNotFound   = errors.New("hotel not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrBookingNotFound = errors.New("booking not found")

	ErrRoomUnavailable = errors.New("room is not available for the selected dates")

	ErrAlreadyCancelled   = errors.New("booking is already cancelled")
	ErrCancellationWindow = errors.New("cancellation is not allowed within 24 hours of check-in")
)
