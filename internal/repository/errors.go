// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking engine and handlers to distinguish between different failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrHotelNotFound is returned when a hotel lookup matches no row.
var ErrHotelNotFound = errors.New("hotel not found")

// ErrRoomUnavailable is returned by Reserve when the serialized
// availability re-check finds a non-cancelled booking whose date range
// overlaps the requested one. Callers should translate this into an
// HTTP 409 response.
var ErrRoomUnavailable = errors.New("room is not available for the selected dates")

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as removing a hotel that still has
// non-cancelled bookings. Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")
