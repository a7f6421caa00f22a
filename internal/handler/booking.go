package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skybook/skybook-api/internal/model"
	"github.com/skybook/skybook-api/internal/service"
)

// BookingEngine is the slice of the booking service the HTTP layer
// needs.  Handlers depend on this interface rather than the concrete
// service so tests can substitute a stub.
type BookingEngine interface {
	CreateBooking(ctx context.Context, userID uint64, in service.CreateBookingInput) (*model.Booking, error)
	ListBookings(ctx context.Context, userID uint64) ([]model.BookingWithHotel, error)
	GetBooking(ctx context.Context, userID, bookingID uint64) (*model.BookingWithHotel, error)
	CancelBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error)
}

// BookingHandler exposes the booking engine over HTTP.  All methods
// assume JWT authentication has already run; the caller identity comes
// from the context, never from the request body.
type BookingHandler struct {
	Engine BookingEngine
}

// NewBookingHandler constructs a BookingHandler.  The engine must be
// non-nil.
func NewBookingHandler(engine BookingEngine) *BookingHandler {
	if engine == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine}
}

// rejectionStatus maps an engine rejection onto an HTTP status.  The
// status is the machine-readable kind: 400 fix your input, 404 no such
// resource, 409 try different dates, 422 state forbids the transition.
// Unknown errors map to 500.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidID),
		errors.Is(err, service.ErrInvalidDates),
		errors.Is(err, service.ErrCheckInPast),
		errors.Is(err, service.ErrCheckOutNotAfter),
		errors.Is(err, service.ErrNoAdults),
		errors.Is(err, service.ErrInvalidGuests),
		errors.Is(err, service.ErrCapacityExceeded):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrHotelNotFound),
		errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRoomUnavailable):
		return http.StatusConflict
	case errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrCancellationWindow):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func rejectJSON(c echo.Context, err error) error {
	status := rejectionStatus(err)
	if status == http.StatusInternalServerError {
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

// Create handles POST /api/bookings.  The body carries hotel id, room
// id, dates and guest counts; the total price is always computed
// server-side.  Returns 201 with the persisted booking on success.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in service.CreateBookingInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.Engine.CreateBooking(c.Request().Context(), userID, in)
	if err != nil {
		return rejectJSON(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// List handles GET /api/bookings/my-bookings.  It returns all bookings
// of the current user, newest first, each with the owning hotel's
// display fields.  An empty list is a valid response.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Engine.ListBookings(c.Request().Context(), userID)
	if err != nil {
		return rejectJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /api/bookings/:id.  Missing bookings and bookings
// owned by other users both produce 404.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	item, err := h.Engine.GetBooking(c.Request().Context(), userID, id)
	if err != nil {
		return rejectJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

// Cancel handles PUT /api/bookings/:id/cancel.  On success the updated
// booking is returned with status cancelled; payment status is never
// touched here.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Engine.CancelBooking(c.Request().Context(), userID, id)
	if err != nil {
		return rejectJSON(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
