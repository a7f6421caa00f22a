package model

import "time"

// Address holds the postal address of a hotel.  It is flattened into
// columns of the `hotels` table rather than stored as a separate
// entity because an address never exists without its hotel.
//
// Fields:
//  Street  – street line of the address.
//  City    – city name.
//  State   – state or region.
//  Country – country name.
//  ZipCode – postal code.
type Address struct {
	Street  string `json:"street"`   // hotels.street
	City    string `json:"city"`     // hotels.city
	State   string `json:"state"`    // hotels.state
	Country string `json:"country"`  // hotels.country
	ZipCode string `json:"zip_code"` // hotels.zip_code
}

// Room describes a bookable room type within a hotel.  Rooms are owned
// by exactly one hotel and have no independent lifecycle: they are
// created and replaced only as part of a hotel create or update.  The
// nightly price is stored in cents to avoid floating point money.
//
// Fields:
//  ID          – primary key identifier, unique within the table.
//  HotelID     – owning hotel.
//  Name        – display name of the room type.
//  Description – marketing description.
//  PriceCents  – nightly price in cents (non-negative).
//  Capacity    – maximum number of guests (positive).
//  Amenities   – list of amenity labels, stored as a JSON array column.
//  Images      – list of image URLs, stored as a JSON array column.
type Room struct {
	ID          uint64   `json:"id"`          // rooms.id
	HotelID     uint64   `json:"-"`           // rooms.hotel_id
	Name        string   `json:"name"`        // rooms.name
	Description string   `json:"description"` // rooms.description
	PriceCents  uint32   `json:"price_cents"` // rooms.price_cents
	Capacity    int      `json:"capacity"`    // rooms.capacity
	Amenities   []string `json:"amenities"`   // rooms.amenities (JSON)
	Images      []string `json:"images"`      // rooms.images (JSON)
}

// Hotel is a catalog entry with its embedded room inventory.  The
// booking engine only ever reads hotels; catalog management endpoints
// are the sole writers.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – hotel name.
//  Description – marketing description.
//  Location    – free-text location used for search ("Miami Beach, Florida").
//  Address     – postal address.
//  Rating      – aggregate rating, 0 when unrated.
//  Reviews     – number of reviews behind the rating.
//  Images      – hotel image URLs (JSON array column).
//  Amenities   – hotel-level amenity labels (JSON array column).
//  Rooms       – room inventory, loaded from the `rooms` table.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Hotel struct {
	ID          uint64    `json:"id"`          // hotels.id
	Name        string    `json:"name"`        // hotels.name
	Description string    `json:"description"` // hotels.description
	Location    string    `json:"location"`    // hotels.location
	Address     Address   `json:"address"`     // hotels.street..zip_code
	Rating      float64   `json:"rating"`      // hotels.rating
	Reviews     uint32    `json:"reviews"`     // hotels.reviews
	Images      []string  `json:"images"`      // hotels.images (JSON)
	Amenities   []string  `json:"amenities"`   // hotels.amenities (JSON)
	Rooms       []Room    `json:"rooms"`       // rooms.* for this hotel
	CreatedAt   time.Time `json:"created_at"`  // hotels.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // hotels.updated_at
}

// RoomByID returns the room with the given id from the hotel's
// inventory, or nil when the hotel has no such room.
func (h *Hotel) RoomByID(roomID uint64) *Room {
	for i := range h.Rooms {
		if h.Rooms[i].ID == roomID {
			return &h.Rooms[i]
		}
	}
	return nil
}
