package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/skybook/skybook-api/internal/model"
)

// HotelRepo provides catalog access for hotels and their embedded room
// inventory.  Hotels own their rooms: room rows are written only as
// part of a hotel create or update, never independently.  All
// timestamp fields are stored in UTC.
type HotelRepo struct {
	db *sql.DB
}

// NewHotelRepo returns a new HotelRepo bound to the given database.
func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// that span repositories.
func (r *HotelRepo) DB() *sql.DB { return r.db }

// HotelFilter captures the optional search criteria of the catalog
// listing endpoint.  Zero values mean "no constraint".
type HotelFilter struct {
	Location      string   // case-insensitive substring match on hotels.location
	MinPriceCents *uint32  // at least one room priced >= this
	MaxPriceCents *uint32  // at least one room priced <= this
	Amenities     []string // hotel must offer every listed amenity
	MinRating     *float64 // hotels.rating >= this
}

// encodeList serializes a string slice into the JSON array format used
// by the images/amenities columns.  A nil slice encodes as [].
func encodeList(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

// decodeList is the inverse of encodeList.  NULL or empty columns
// decode to an empty slice so responses never contain JSON null.
func decodeList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// buildHotelFilter translates a HotelFilter into a WHERE clause and its
// arguments.  The returned clause is empty when no criteria are set.
func buildHotelFilter(f HotelFilter) (string, []interface{}) {
	conds := make([]string, 0, 4)
	args := make([]interface{}, 0, 8)
	if loc := strings.TrimSpace(f.Location); loc != "" {
		conds = append(conds, "h.location LIKE ?")
		args = append(args, "%"+loc+"%")
	}
	if f.MinPriceCents != nil || f.MaxPriceCents != nil {
		price := "SELECT 1 FROM rooms rm WHERE rm.hotel_id = h.id"
		if f.MinPriceCents != nil {
			price += " AND rm.price_cents >= ?"
			args = append(args, *f.MinPriceCents)
		}
		if f.MaxPriceCents != nil {
			price += " AND rm.price_cents <= ?"
			args = append(args, *f.MaxPriceCents)
		}
		conds = append(conds, "EXISTS ("+price+")")
	}
	for _, a := range f.Amenities {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		conds = append(conds, "JSON_CONTAINS(h.amenities, JSON_QUOTE(?))")
		args = append(args, a)
	}
	if f.MinRating != nil {
		conds = append(conds, "h.rating >= ?")
		args = append(args, *f.MinRating)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns all hotels matching the filter, each with its full room
// inventory.  Hotels are ordered by rating descending so the best
// rated appear first; rooms of a hotel are ordered by price ascending.
func (r *HotelRepo) List(ctx context.Context, f HotelFilter) ([]model.Hotel, error) {
	where, args := buildHotelFilter(f)
	q := `SELECT h.id, h.name, h.description, h.location,
	             h.street, h.city, h.state, h.country, h.zip_code,
	             h.rating, h.reviews, h.images, h.amenities,
	             h.created_at, h.updated_at
	      FROM hotels h` + where + ` ORDER BY h.rating DESC, h.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	hotels := make([]model.Hotel, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var h model.Hotel
		var images, amenities []byte
		if err := rows.Scan(
			&h.ID, &h.Name, &h.Description, &h.Location,
			&h.Address.Street, &h.Address.City, &h.Address.State, &h.Address.Country, &h.Address.ZipCode,
			&h.Rating, &h.Reviews, &images, &amenities,
			&h.CreatedAt, &h.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if h.Images, err = decodeList(images); err != nil {
			return nil, err
		}
		if h.Amenities, err = decodeList(amenities); err != nil {
			return nil, err
		}
		h.Rooms = []model.Room{}
		index[h.ID] = len(hotels)
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(hotels) == 0 {
		return hotels, nil
	}
	// Populate rooms for all hotels in a single query
	ids := make([]interface{}, 0, len(hotels))
	placeholders := make([]string, 0, len(hotels))
	for _, h := range hotels {
		ids = append(ids, h.ID)
		placeholders = append(placeholders, "?")
	}
	roomQ := `SELECT id, hotel_id, name, description, price_cents, capacity, amenities, images
	          FROM rooms
	          WHERE hotel_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY hotel_id, price_cents, id`
	rrows, err := r.db.QueryContext(ctx, roomQ, ids...)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()
	for rrows.Next() {
		rm, err := scanRoom(rrows)
		if err != nil {
			return nil, err
		}
		idx, ok := index[rm.HotelID]
		if !ok {
			continue
		}
		hotels[idx].Rooms = append(hotels[idx].Rooms, rm)
	}
	if err := rrows.Err(); err != nil {
		return nil, err
	}
	return hotels, nil
}

// rowScanner matches both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(s rowScanner) (model.Room, error) {
	var rm model.Room
	var amenities, images []byte
	if err := s.Scan(&rm.ID, &rm.HotelID, &rm.Name, &rm.Description,
		&rm.PriceCents, &rm.Capacity, &amenities, &images); err != nil {
		return rm, err
	}
	var err error
	if rm.Amenities, err = decodeList(amenities); err != nil {
		return rm, err
	}
	if rm.Images, err = decodeList(images); err != nil {
		return rm, err
	}
	return rm, nil
}

// GetByID returns a single hotel with its rooms.  ErrHotelNotFound is
// returned when no hotel with the given id exists.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	const q = `SELECT h.id, h.name, h.description, h.location,
	                  h.street, h.city, h.state, h.country, h.zip_code,
	                  h.rating, h.reviews, h.images, h.amenities,
	                  h.created_at, h.updated_at
	           FROM hotels h WHERE h.id = ?`
	var h model.Hotel
	var images, amenities []byte
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&h.ID, &h.Name, &h.Description, &h.Location,
		&h.Address.Street, &h.Address.City, &h.Address.State, &h.Address.Country, &h.Address.ZipCode,
		&h.Rating, &h.Reviews, &images, &amenities,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}
	if h.Images, err = decodeList(images); err != nil {
		return nil, err
	}
	if h.Amenities, err = decodeList(amenities); err != nil {
		return nil, err
	}
	h.Rooms = []model.Room{}
	const roomQ = `SELECT id, hotel_id, name, description, price_cents, capacity, amenities, images
	               FROM rooms WHERE hotel_id = ? ORDER BY price_cents, id`
	rows, err := r.db.QueryContext(ctx, roomQ, h.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		h.Rooms = append(h.Rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &h, nil
}

// Create inserts a hotel and its rooms in one transaction.  Generated
// ids are written back onto the provided model.
func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	images, err := encodeList(h.Images)
	if err != nil {
		return err
	}
	amenities, err := encodeList(h.Amenities)
	if err != nil {
		return err
	}
	const q = `INSERT INTO hotels
	           (name, description, location, street, city, state, country, zip_code, rating, reviews, images, amenities)
	           VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		h.Name, h.Description, h.Location,
		h.Address.Street, h.Address.City, h.Address.State, h.Address.Country, h.Address.ZipCode,
		h.Rating, h.Reviews, images, amenities)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	for i := range h.Rooms {
		if err := insertRoomTx(ctx, tx, h.ID, &h.Rooms[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func insertRoomTx(ctx context.Context, tx *sql.Tx, hotelID uint64, rm *model.Room) error {
	amenities, err := encodeList(rm.Amenities)
	if err != nil {
		return err
	}
	images, err := encodeList(rm.Images)
	if err != nil {
		return err
	}
	const q = `INSERT INTO rooms (hotel_id, name, description, price_cents, capacity, amenities, images)
	           VALUES (?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q, hotelID, rm.Name, rm.Description, rm.PriceCents, rm.Capacity, amenities, images)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	rm.HotelID = hotelID
	return nil
}

// Update rewrites a hotel and reconciles its room inventory: rooms
// carrying an id are updated in place, rooms without one are inserted,
// and rooms missing from the payload are deleted.  Existing bookings
// are unaffected by deletions because they carry their own room
// snapshot.  ErrHotelNotFound is returned when the hotel does not
// exist.
func (r *HotelRepo) Update(ctx context.Context, h *model.Hotel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	images, err := encodeList(h.Images)
	if err != nil {
		return err
	}
	amenities, err := encodeList(h.Amenities)
	if err != nil {
		return err
	}
	const q = `UPDATE hotels SET
	           name=?, description=?, location=?, street=?, city=?, state=?, country=?, zip_code=?,
	           rating=?, reviews=?, images=?, amenities=?
	           WHERE id=?`
	res, err := tx.ExecContext(ctx, q,
		h.Name, h.Description, h.Location,
		h.Address.Street, h.Address.City, h.Address.State, h.Address.Country, h.Address.ZipCode,
		h.Rating, h.Reviews, images, amenities, h.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing hotel and for a no-op
		// update, so confirm existence explicitly.
		var exists uint64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM hotels WHERE id=?", h.ID).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return ErrHotelNotFound
			}
			return err
		}
	}
	keep := make([]interface{}, 0, len(h.Rooms))
	for i := range h.Rooms {
		rm := &h.Rooms[i]
		if rm.ID == 0 {
			if err := insertRoomTx(ctx, tx, h.ID, rm); err != nil {
				return err
			}
		} else {
			ams, err := encodeList(rm.Amenities)
			if err != nil {
				return err
			}
			imgs, err := encodeList(rm.Images)
			if err != nil {
				return err
			}
			const uq = `UPDATE rooms SET name=?, description=?, price_cents=?, capacity=?, amenities=?, images=?
			            WHERE id=? AND hotel_id=?`
			if _, err := tx.ExecContext(ctx, uq, rm.Name, rm.Description, rm.PriceCents, rm.Capacity, ams, imgs, rm.ID, h.ID); err != nil {
				return err
			}
			rm.HotelID = h.ID
		}
		keep = append(keep, rm.ID)
	}
	// Remove rooms absent from the payload
	if len(keep) == 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE hotel_id=?", h.ID); err != nil {
			return err
		}
	} else {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
		del := "DELETE FROM rooms WHERE hotel_id=? AND id NOT IN (" + placeholders + ")"
		args := append([]interface{}{h.ID}, keep...)
		if _, err := tx.ExecContext(ctx, del, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a hotel and its rooms.  It refuses with ErrConflict
// when any non-cancelled booking still references the hotel, and
// returns ErrHotelNotFound when the hotel does not exist.
func (r *HotelRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var live int
	const checkQ = `SELECT COUNT(*) FROM bookings WHERE hotel_id = ? AND status <> 'cancelled'`
	if err := tx.QueryRowContext(ctx, checkQ, id).Scan(&live); err != nil {
		return err
	}
	if live > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE hotel_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM hotels WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrHotelNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
