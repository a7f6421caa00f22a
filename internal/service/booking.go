package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/skybook/skybook-api/internal/model"
	"github.com/skybook/skybook-api/internal/repository"
)

// cancellationWindow is the minimum lead time before check-in at which
// a booking may still be cancelled.  Measured against wall-clock time
// at the moment of the cancel call.
const cancellationWindow = 24 * time.Hour

// HotelCatalog is the read-only hotel lookup the engine consumes.  The
// engine never mutates catalog data.
type HotelCatalog interface {
	GetByID(ctx context.Context, id uint64) (*model.Hotel, error)
}

// BookingStore is the persistence capability the engine consumes.
// Reserve must guarantee that for a fixed (hotel, room) the
// availability re-check and the insert behave as if serialized against
// concurrent reservations: under concurrent overlapping requests at
// most one Reserve succeeds and the rest return
// repository.ErrRoomUnavailable.
type BookingStore interface {
	FindOverlapping(ctx context.Context, hotelID, roomID uint64, checkIn, checkOut time.Time) ([]model.Booking, error)
	Reserve(ctx context.Context, b *model.Booking) error
	GetByIDForUser(ctx context.Context, bookingID, userID uint64) (*model.BookingWithHotel, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.BookingWithHotel, error)
	UpdateStatus(ctx context.Context, bookingID uint64, status string) (*model.Booking, error)
}

// BookingNotifier receives domain events after a booking changes.
// Notification is best-effort: failures are the notifier's problem and
// never fail the request.
type BookingNotifier interface {
	BookingCreated(ctx context.Context, b model.Booking)
	BookingCancelled(ctx context.Context, b model.Booking)
}

// BookingService decides whether a reservation may be created, at what
// price, and enforces the cancellation policy.  It is invoked
// synchronously per request and holds no state of its own.
type BookingService struct {
	catalog  HotelCatalog
	store    BookingStore
	notifier BookingNotifier // may be nil when no broker is configured
	now      func() time.Time
}

// NewBookingService constructs the engine.  catalog and store must be
// non-nil; notifier may be nil.
func NewBookingService(catalog HotelCatalog, store BookingStore, notifier BookingNotifier) *BookingService {
	if catalog == nil || store == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{
		catalog:  catalog,
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateBookingInput is the request shape of CreateBooking.  Dates
// arrive as strings and are parsed by the engine so that all date
// validation lives in one place.
type CreateBookingInput struct {
	HotelID  uint64       `json:"hotel_id"`
	RoomID   uint64       `json:"room_id"`
	CheckIn  string       `json:"check_in"`
	CheckOut string       `json:"check_out"`
	Guests   model.Guests `json:"guests"`
}

// parseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates.  The
// result is always UTC.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// nights returns the number of billable nights between check-in and
// check-out: the ceiling of the span in whole days.  With checkOut
// strictly after checkIn this is always >= 1.
func nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// CreateBooking validates the request, checks availability and
// capacity, computes the price and persists a new pending booking.
// Checks run in a fixed order and the first failure wins; nothing is
// written unless every check passes.
func (s *BookingService) CreateBooking(ctx context.Context, userID uint64, in CreateBookingInput) (*model.Booking, error) {
	if in.HotelID == 0 {
		return nil, fmt.Errorf("%w: hotel id", ErrInvalidID)
	}
	if in.RoomID == 0 {
		return nil, fmt.Errorf("%w: room id", ErrInvalidID)
	}
	checkIn, err := parseDate(in.CheckIn)
	if err != nil {
		return nil, ErrInvalidDates
	}
	checkOut, err := parseDate(in.CheckOut)
	if err != nil {
		return nil, ErrInvalidDates
	}
	if checkIn.Before(s.now()) {
		return nil, ErrCheckInPast
	}
	if !checkOut.After(checkIn) {
		return nil, ErrCheckOutNotAfter
	}

	hotel, err := s.catalog.GetByID(ctx, in.HotelID)
	if err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}
	room := hotel.RoomByID(in.RoomID)
	if room == nil {
		return nil, ErrRoomNotFound
	}

	// Fast-path availability check; Reserve repeats it under the room
	// lock so a concurrent winner still turns into ErrRoomUnavailable.
	clashes, err := s.store.FindOverlapping(ctx, hotel.ID, room.ID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if len(clashes) > 0 {
		return nil, ErrRoomUnavailable
	}

	if in.Guests.Adults < 1 {
		return nil, ErrNoAdults
	}
	if in.Guests.Children < 0 {
		return nil, fmt.Errorf("%w: children must not be negative", ErrInvalidGuests)
	}
	if in.Guests.Adults+in.Guests.Children > room.Capacity {
		return nil, fmt.Errorf("%w: maximum capacity is %d guests", ErrCapacityExceeded, room.Capacity)
	}

	// Widened multiply: a distant check-out must not wrap the total.
	total := uint64(nights(checkIn, checkOut)) * uint64(room.PriceCents)

	b := &model.Booking{
		Reference: uuid.NewString(),
		UserID:    userID,
		HotelID:   hotel.ID,
		Room: model.RoomSnapshot{
			ID:         room.ID,
			Name:       room.Name,
			PriceCents: room.PriceCents,
		},
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        in.Guests,
		TotalCents:    total,
		Status:        model.BookingStatusPending,
		PaymentStatus: model.PaymentStatusPending,
	}
	if err := s.store.Reserve(ctx, b); err != nil {
		if errors.Is(err, repository.ErrRoomUnavailable) {
			return nil, ErrRoomUnavailable
		}
		return nil, err
	}
	if s.notifier != nil {
		go s.notifier.BookingCreated(context.WithoutCancel(ctx), *b)
	}
	return b, nil
}

// ListBookings returns the caller's bookings, newest first, each
// enriched with the owning hotel's display fields.
func (s *BookingService) ListBookings(ctx context.Context, userID uint64) ([]model.BookingWithHotel, error) {
	return s.store.ListByUser(ctx, userID)
}

// GetBooking returns one booking of the caller.  A booking that does
// not exist and a booking owned by someone else are indistinguishable:
// both yield ErrBookingNotFound.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uint64) (*model.BookingWithHotel, error) {
	if bookingID == 0 {
		return nil, fmt.Errorf("%w: booking id", ErrInvalidID)
	}
	b, err := s.store.GetByIDForUser(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// CancelBooking flips a booking of the caller to cancelled.  The
// booking must not already be cancelled and the call must come at
// least 24 hours before check-in.  Payment status is left untouched;
// refunds are not this service's concern.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	if bookingID == 0 {
		return nil, fmt.Errorf("%w: booking id", ErrInvalidID)
	}
	existing, err := s.store.GetByIDForUser(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if existing.Status == model.BookingStatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if existing.CheckIn.Sub(s.now()) < cancellationWindow {
		return nil, ErrCancellationWindow
	}
	updated, err := s.store.UpdateStatus(ctx, bookingID, model.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		go s.notifier.BookingCancelled(context.WithoutCancel(ctx), *updated)
	}
	return updated, nil
}
