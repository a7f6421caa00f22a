package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/skybook/skybook-api/internal/model"
)

// BookingRepo provides persistence for bookings.  A booking row is
// inserted once by Reserve and mutated only by UpdateStatus; rows are
// never deleted.  All DATETIME columns are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// overlapCond is the availability predicate shared by FindOverlapping
// and Reserve.  Both inequalities are non-strict: a stay whose check-in
// equals another stay's check-out counts as a conflict.  Exact same-day
// turnover is deliberately rejected as the conservative policy.
const overlapCond = `hotel_id = ? AND room_id = ? AND status <> 'cancelled'
	AND check_in <= ? AND check_out >= ?`

// overlapArgs binds a new stay to overlapCond's placeholders.  Note
// the reversal: the new check-OUT binds against stored check_in and
// the new check-IN against stored check_out.  An existing stay matches
// when it starts no later than the new stay ends AND ends no earlier
// than the new stay starts.
func overlapArgs(hotelID, roomID uint64, checkIn, checkOut time.Time) []interface{} {
	return []interface{}{hotelID, roomID, checkOut, checkIn}
}

const bookingCols = `id, reference, user_id, hotel_id, room_id, room_name, room_price_cents,
	check_in, check_out, adults, children, total_cents, status, payment_status,
	created_at, updated_at`

func scanBooking(s rowScanner) (model.Booking, error) {
	var b model.Booking
	err := s.Scan(
		&b.ID, &b.Reference, &b.UserID, &b.HotelID,
		&b.Room.ID, &b.Room.Name, &b.Room.PriceCents,
		&b.CheckIn, &b.CheckOut,
		&b.Guests.Adults, &b.Guests.Children,
		&b.TotalCents, &b.Status, &b.PaymentStatus,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// FindOverlapping returns the non-cancelled bookings for a (hotel,
// room) pair whose date range overlaps [checkIn, checkOut] under the
// inclusive-boundary rule.  This is the lock-free fast path used for a
// friendly rejection before Reserve takes the row lock.
func (r *BookingRepo) FindOverlapping(ctx context.Context, hotelID, roomID uint64, checkIn, checkOut time.Time) ([]model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings WHERE ` + overlapCond + ` ORDER BY check_in`
	rows, err := r.db.QueryContext(ctx, q, overlapArgs(hotelID, roomID, checkIn, checkOut)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Reserve inserts a new booking if and only if the room is still free
// for the requested range.  The availability check and the insert run
// in one transaction that first locks the room row, so concurrent
// creates for the same room serialize and at most one overlapping
// booking can ever be committed.  ErrRoomUnavailable is returned when
// the re-check finds a conflict; the generated id and timestamps are
// written back onto the provided record on success.
func (r *BookingRepo) Reserve(ctx context.Context, b *model.Booking) error {
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
	// Serialize all creates for this room on the room row.  This is
	// what makes the overlap re-check below authoritative.
	var roomID uint64
	const lockQ = `SELECT id FROM rooms WHERE id = ? AND hotel_id = ? FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockQ, b.Room.ID, b.HotelID).Scan(&roomID); err != nil {
		return err
	}
	var clash int
	countQ := `SELECT COUNT(*) FROM bookings WHERE ` + overlapCond
	if err := tx.QueryRowContext(ctx, countQ, overlapArgs(b.HotelID, b.Room.ID, b.CheckIn, b.CheckOut)...).Scan(&clash); err != nil {
		return err
	}
	if clash > 0 {
		return ErrRoomUnavailable
	}
	const ins = `INSERT INTO bookings
	             (reference, user_id, hotel_id, room_id, room_name, room_price_cents,
	              check_in, check_out, adults, children, total_cents, status, payment_status)
	             VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, ins,
		b.Reference, b.UserID, b.HotelID,
		b.Room.ID, b.Room.Name, b.Room.PriceCents,
		b.CheckIn, b.CheckOut,
		b.Guests.Adults, b.Guests.Children,
		b.TotalCents, b.Status, b.PaymentStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults
	sel := `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`
	stored, err := scanBooking(tx.QueryRowContext(ctx, sel, b.ID))
	if err != nil {
		return err
	}
	*b = stored
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const bookingJoinCols = `b.id, b.reference, b.user_id, b.hotel_id, b.room_id, b.room_name, b.room_price_cents,
	b.check_in, b.check_out, b.adults, b.children, b.total_cents, b.status, b.payment_status,
	b.created_at, b.updated_at, h.name, h.location, h.images`

func scanBookingWithHotel(s rowScanner) (model.BookingWithHotel, error) {
	var d model.BookingWithHotel
	var images []byte
	err := s.Scan(
		&d.ID, &d.Reference, &d.UserID, &d.HotelID,
		&d.Room.ID, &d.Room.Name, &d.Room.PriceCents,
		&d.CheckIn, &d.CheckOut,
		&d.Guests.Adults, &d.Guests.Children,
		&d.TotalCents, &d.Status, &d.PaymentStatus,
		&d.CreatedAt, &d.UpdatedAt,
		&d.Hotel.Name, &d.Hotel.Location, &images,
	)
	if err != nil {
		return d, err
	}
	if d.Hotel.Images, err = decodeList(images); err != nil {
		return d, err
	}
	return d, nil
}

// GetByIDForUser returns a single booking with its hotel's display
// fields.  The query is restricted to the calling user, so a booking
// that exists but belongs to someone else yields sql.ErrNoRows exactly
// like a missing one; callers cannot probe for other users' bookings.
func (r *BookingRepo) GetByIDForUser(ctx context.Context, bookingID, userID uint64) (*model.BookingWithHotel, error) {
	q := `SELECT ` + bookingJoinCols + `
	      FROM bookings b
	      JOIN hotels h ON h.id = b.hotel_id
	      WHERE b.id = ? AND b.user_id = ?`
	d, err := scanBookingWithHotel(r.db.QueryRowContext(ctx, q, bookingID, userID))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByUser returns all bookings of a user, newest first, each with
// the owning hotel's display fields.  When no bookings exist an empty
// slice is returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingWithHotel, error) {
	q := `SELECT ` + bookingJoinCols + `
	      FROM bookings b
	      JOIN hotels h ON h.id = b.hotel_id
	      WHERE b.user_id = ?
	      ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookingWithHotel, 0)
	for rows.Next() {
		d, err := scanBookingWithHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus sets a booking's status and returns the updated row.
// Payment status is deliberately left untouched.  sql.ErrNoRows is
// returned when the booking does not exist.
func (r *BookingRepo) UpdateStatus(ctx context.Context, bookingID uint64, status string) (*model.Booking, error) {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=?", status, bookingID); err != nil {
		return nil, err
	}
	sel := `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, sel, bookingID))
	if err != nil {
		return nil, err
	}
	return &b, nil
}
