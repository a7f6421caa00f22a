package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skybook/skybook-api/internal/model"
	"github.com/skybook/skybook-api/internal/repository"
)

// HotelHandler exposes the hotel catalog: public browse/search plus
// admin-only create, update and delete.  The booking engine reads the
// same catalog through the repository; these endpoints are its only
// writers.
type HotelHandler struct {
	Hotels *repository.HotelRepo
}

func NewHotelHandler(hotels *repository.HotelRepo) *HotelHandler {
	if hotels == nil {
		panic("nil repository passed to NewHotelHandler")
	}
	return &HotelHandler{Hotels: hotels}
}

// List handles GET /api/hotels.  Supported query parameters:
//   location   – case-insensitive substring of the hotel location
//   min_price  – minimum nightly room price in cents
//   max_price  – maximum nightly room price in cents
//   amenities  – comma-separated list; every amenity must be offered
//   rating     – minimum hotel rating
// Unset parameters do not constrain the result.
func (h *HotelHandler) List(c echo.Context) error {
	var f repository.HotelFilter
	f.Location = c.QueryParam("location")
	if v := c.QueryParam("min_price"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid min_price"})
		}
		p := uint32(n)
		f.MinPriceCents = &p
	}
	if v := c.QueryParam("max_price"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_price"})
		}
		p := uint32(n)
		f.MaxPriceCents = &p
	}
	if v := c.QueryParam("amenities"); v != "" {
		f.Amenities = strings.Split(v, ",")
	}
	if v := c.QueryParam("rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rating"})
		}
		f.MinRating = &r
	}
	hotels, err := h.Hotels.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load hotels"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": hotels})
}

// Get handles GET /api/hotels/:id and returns the hotel with its full
// room inventory.
func (h *HotelHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	hotel, err := h.Hotels.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load hotel"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": hotel})
}

// validateHotel applies the minimal invariants of catalog writes.  The
// returned message is empty when the hotel is acceptable.
func validateHotel(hotel *model.Hotel) string {
	if strings.TrimSpace(hotel.Name) == "" {
		return "name is required"
	}
	if strings.TrimSpace(hotel.Location) == "" {
		return "location is required"
	}
	for i := range hotel.Rooms {
		rm := &hotel.Rooms[i]
		if strings.TrimSpace(rm.Name) == "" {
			return "room name is required"
		}
		if rm.Capacity <= 0 {
			return "room capacity must be positive"
		}
	}
	return ""
}

// Create handles POST /api/hotels (ADMIN).  The body is a full hotel
// document including rooms; generated ids are echoed back.
func (h *HotelHandler) Create(c echo.Context) error {
	var hotel model.Hotel
	if err := c.Bind(&hotel); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := validateHotel(&hotel); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Hotels.Create(c.Request().Context(), &hotel); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create hotel"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": hotel})
}

// Update handles PUT /api/hotels/:id (ADMIN).  Rooms in the body
// replace the stored inventory: rooms with ids are updated, rooms
// without ids are added, rooms left out are removed.  Existing
// bookings keep their snapshots regardless.
func (h *HotelHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	var hotel model.Hotel
	if err := c.Bind(&hotel); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	hotel.ID = id
	if msg := validateHotel(&hotel); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Hotels.Update(c.Request().Context(), &hotel); err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update hotel"})
	}
	updated, err := h.Hotels.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load hotel"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": updated})
}

// Delete handles DELETE /api/hotels/:id (ADMIN).  A hotel with
// non-cancelled bookings cannot be removed.
func (h *HotelHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	err := h.Hotels.Delete(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "hotel has active bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete hotel"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "hotel deleted"})
}
