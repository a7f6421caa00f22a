package model

import "time"

// Booking status values.  The only transition ever performed after
// creation is pending/confirmed -> cancelled; cancelled is terminal.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Payment status values.  This service records the payment state but
// never advances it; payment processing lives in a separate system.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// RoomSnapshot is the denormalized copy of the booked room embedded in
// every booking.  It captures the room's identity, name and nightly
// price at booking time so that later catalog edits never alter
// historical bookings.
type RoomSnapshot struct {
	ID         uint64 `json:"id"`          // bookings.room_id
	Name       string `json:"name"`        // bookings.room_name
	PriceCents uint32 `json:"price_cents"` // bookings.room_price_cents
}

// Guests holds the party size of a booking.  Adults must be at least
// one; children may be zero.
type Guests struct {
	Adults   int `json:"adults"`   // bookings.adults
	Children int `json:"children"` // bookings.children
}

// Booking records a stay reserved by a user at a hotel.  A booking is
// created once and its only subsequent mutation is cancellation; it is
// never deleted.
//
// Fields:
//  ID            – primary key identifier.
//  Reference     – human-facing confirmation code (UUID).
//  UserID        – user who made the booking.
//  HotelID       – hotel being booked.
//  Room          – snapshot of the booked room (see RoomSnapshot).
//  CheckIn       – check-in date, UTC.
//  CheckOut      – check-out date, UTC; strictly after CheckIn.
//  Guests        – party size; adults+children never exceed the
//                  snapshotted room's capacity.
//  TotalCents    – nights x nightly price, computed server-side.
//  Status        – pending, confirmed or cancelled.
//  PaymentStatus – pending, completed or failed.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Booking struct {
	ID            uint64       `json:"id"`             // bookings.id
	Reference     string       `json:"reference"`      // bookings.reference
	UserID        uint64       `json:"user_id"`        // bookings.user_id
	HotelID       uint64       `json:"hotel_id"`       // bookings.hotel_id
	Room          RoomSnapshot `json:"room"`           // bookings.room_*
	CheckIn       time.Time    `json:"check_in"`       // bookings.check_in
	CheckOut      time.Time    `json:"check_out"`      // bookings.check_out
	Guests        Guests       `json:"guests"`         // bookings.adults/children
	TotalCents    uint64       `json:"total_cents"`    // bookings.total_cents
	Status        string       `json:"status"`         // bookings.status
	PaymentStatus string       `json:"payment_status"` // bookings.payment_status
	CreatedAt     time.Time    `json:"created_at"`     // bookings.created_at
	UpdatedAt     time.Time    `json:"updated_at"`     // bookings.updated_at
}

// HotelSummary carries the display fields of a hotel that are joined
// onto bookings for list and detail responses.
type HotelSummary struct {
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Images   []string `json:"images"`
}

// BookingWithHotel is a booking enriched with its hotel's display
// fields.  It is a read-side join produced by the repository; nothing
// is ever written through it.
type BookingWithHotel struct {
	Booking
	Hotel HotelSummary `json:"hotel"`
}
