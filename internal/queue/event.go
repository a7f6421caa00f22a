// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a booking is successfully
// placed.  It carries enough context for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID  uint64 `json:"booking_id"`
	Reference  string `json:"reference"`
	UserID     uint64 `json:"user_id"`
	HotelID    uint64 `json:"hotel_id"`
	RoomID     uint64 `json:"room_id"`
	RoomName   string `json:"room_name"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Adults     int    `json:"adults"`
	Children   int    `json:"children"`
	TotalCents uint64 `json:"total_cents"`
	CreatedAt  string `json:"created_at"`
}

// BookingCancelledEvent is published after a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID   uint64 `json:"booking_id"`
	Reference   string `json:"reference"`
	UserID      uint64 `json:"user_id"`
	HotelID     uint64 `json:"hotel_id"`
	RoomID      uint64 `json:"room_id"`
	CheckIn     string `json:"check_in"`
	TotalCents  uint64 `json:"total_cents"`
	CancelledAt string `json:"cancelled_at"`
}
