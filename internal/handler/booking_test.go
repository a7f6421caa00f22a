package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skybook/skybook-api/internal/model"
	"github.com/skybook/skybook-api/internal/service"
)

type stubEngine struct {
	booking *model.Booking
	detail  *model.BookingWithHotel
	list    []model.BookingWithHotel
	err     error

	gotUserID uint64
	gotInput  service.CreateBookingInput
}

func (s *stubEngine) CreateBooking(ctx context.Context, userID uint64, in service.CreateBookingInput) (*model.Booking, error) {
	s.gotUserID = userID
	s.gotInput = in
	return s.booking, s.err
}

func (s *stubEngine) ListBookings(ctx context.Context, userID uint64) ([]model.BookingWithHotel, error) {
	s.gotUserID = userID
	return s.list, s.err
}

func (s *stubEngine) GetBooking(ctx context.Context, userID, bookingID uint64) (*model.BookingWithHotel, error) {
	s.gotUserID = userID
	return s.detail, s.err
}

func (s *stubEngine) CancelBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	s.gotUserID = userID
	return s.booking, s.err
}

func newBookingCtx(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(42)) // as the JWT middleware stores it
	return c, rec
}

func TestBookingCreate_Success(t *testing.T) {
	eng := &stubEngine{booking: &model.Booking{
		ID:         1,
		Reference:  "ref-1",
		UserID:     42,
		HotelID:    7,
		Room:       model.RoomSnapshot{ID: 2, Name: "Deluxe Double", PriceCents: 100_00},
		TotalCents: 200_00,
		Status:     model.BookingStatusPending,
	}}
	h := NewBookingHandler(eng)

	body := `{"hotel_id":7,"room_id":2,"check_in":"2026-09-10","check_out":"2026-09-12","guests":{"adults":2}}`
	c, rec := newBookingCtx(t, http.MethodPost, "/api/bookings", body)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint64(42), eng.gotUserID)
	assert.Equal(t, uint64(7), eng.gotInput.HotelID)

	var got model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ref-1", got.Reference)
	assert.Equal(t, uint64(200_00), got.TotalCents)
}

func TestBookingCreate_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid dates", service.ErrInvalidDates, http.StatusBadRequest},
		{"check-in past", service.ErrCheckInPast, http.StatusBadRequest},
		{"capacity", service.ErrCapacityExceeded, http.StatusBadRequest},
		{"hotel missing", service.ErrHotelNotFound, http.StatusNotFound},
		{"room missing", service.ErrRoomNotFound, http.StatusNotFound},
		{"dates taken", service.ErrRoomUnavailable, http.StatusConflict},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewBookingHandler(&stubEngine{err: tc.err})
			body := `{"hotel_id":7,"room_id":2,"check_in":"2026-09-10","check_out":"2026-09-12","guests":{"adults":2}}`
			c, rec := newBookingCtx(t, http.MethodPost, "/api/bookings", body)

			require.NoError(t, h.Create(c))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestBookingCreate_InternalErrorIsOpaque(t *testing.T) {
	h := NewBookingHandler(&stubEngine{err: errors.New("dial tcp 10.0.0.5:3306: connection refused")})
	c, rec := newBookingCtx(t, http.MethodPost, "/api/bookings", `{"hotel_id":7,"room_id":2}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestBookingCreate_Unauthorized(t *testing.T) {
	h := NewBookingHandler(&stubEngine{})
	c, rec := newBookingCtx(t, http.MethodPost, "/api/bookings", `{}`)
	c.Set("user_id", nil)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookingList(t *testing.T) {
	eng := &stubEngine{list: []model.BookingWithHotel{
		{Booking: model.Booking{ID: 2, CheckIn: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)}},
		{Booking: model.Booking{ID: 1}},
	}}
	h := NewBookingHandler(eng)
	c, rec := newBookingCtx(t, http.MethodGet, "/api/bookings/my-bookings", "")

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Items []model.BookingWithHotel `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Items, 2)
	assert.Equal(t, uint64(42), eng.gotUserID)
}

func TestBookingGet(t *testing.T) {
	eng := &stubEngine{detail: &model.BookingWithHotel{
		Booking: model.Booking{ID: 9, UserID: 42},
		Hotel:   model.HotelSummary{Name: "Seaside Grand", Location: "Miami Beach, Florida"},
	}}
	h := NewBookingHandler(eng)
	c, rec := newBookingCtx(t, http.MethodGet, "/api/bookings/9", "")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Seaside Grand")
}

func TestBookingGet_BadID(t *testing.T) {
	h := NewBookingHandler(&stubEngine{})
	c, rec := newBookingCtx(t, http.MethodGet, "/api/bookings/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingGet_NotFound(t *testing.T) {
	h := NewBookingHandler(&stubEngine{err: service.ErrBookingNotFound})
	c, rec := newBookingCtx(t, http.MethodGet, "/api/bookings/9", "")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingCancel(t *testing.T) {
	eng := &stubEngine{booking: &model.Booking{ID: 9, Status: model.BookingStatusCancelled}}
	h := NewBookingHandler(eng)
	c, rec := newBookingCtx(t, http.MethodPut, "/api/bookings/9/cancel", "")
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
}

func TestBookingCancel_StateErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
	}{
		{"already cancelled", service.ErrAlreadyCancelled},
		{"inside window", service.ErrCancellationWindow},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := NewBookingHandler(&stubEngine{err: tc.err})
			c, rec := newBookingCtx(t, http.MethodPut, "/api/bookings/9/cancel", "")
			c.SetParamNames("id")
			c.SetParamValues("9")

			require.NoError(t, h.Cancel(c))
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}
