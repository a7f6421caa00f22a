package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skybook/skybook-api/internal/model"
	"github.com/skybook/skybook-api/internal/repository"
)

type fakeCatalog struct {
	hotel *model.Hotel
	err   error
	calls int
}

func (f *fakeCatalog) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.hotel, nil
}

type fakeStore struct {
	overlaps     []model.Booking
	reserveErr   error
	reserveCalls int

	byID   *model.BookingWithHotel
	getErr error
	list   []model.BookingWithHotel

	updated       *model.Booking
	updateErr     error
	updatedStatus string
}

func (f *fakeStore) FindOverlapping(ctx context.Context, hotelID, roomID uint64, checkIn, checkOut time.Time) ([]model.Booking, error) {
	return f.overlaps, nil
}

func (f *fakeStore) Reserve(ctx context.Context, b *model.Booking) error {
	f.reserveCalls++
	if f.reserveErr != nil {
		return f.reserveErr
	}
	b.ID = 1
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	return nil
}

func (f *fakeStore) GetByIDForUser(ctx context.Context, bookingID, userID uint64) (*model.BookingWithHotel, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byID, nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID uint64) ([]model.BookingWithHotel, error) {
	return f.list, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, bookingID uint64, status string) (*model.Booking, error) {
	f.updatedStatus = status
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updated, nil
}

type fakeNotifier struct {
	created   chan model.Booking
	cancelled chan model.Booking
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		created:   make(chan model.Booking, 1),
		cancelled: make(chan model.Booking, 1),
	}
}

func (f *fakeNotifier) BookingCreated(ctx context.Context, b model.Booking)   { f.created <- b }
func (f *fakeNotifier) BookingCancelled(ctx context.Context, b model.Booking) { f.cancelled <- b }

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func testHotel() *model.Hotel {
	return &model.Hotel{
		ID:       7,
		Name:     "Seaside Grand",
		Location: "Miami Beach, Florida",
		Rooms: []model.Room{
			{ID: 2, HotelID: 7, Name: "Deluxe Double", PriceCents: 100_00, Capacity: 2},
			{ID: 3, HotelID: 7, Name: "Family Suite", PriceCents: 180_00, Capacity: 4},
		},
	}
}

func newTestService(catalog HotelCatalog, store BookingStore, notifier BookingNotifier) *BookingService {
	svc := NewBookingService(catalog, store, notifier)
	svc.now = func() time.Time { return testNow }
	return svc
}

func validInput() CreateBookingInput {
	return CreateBookingInput{
		HotelID:  7,
		RoomID:   2,
		CheckIn:  "2026-09-10",
		CheckOut: "2026-09-12",
		Guests:   model.Guests{Adults: 2},
	}
}

func TestCreateBooking_Success(t *testing.T) {
	store := &fakeStore{}
	notifier := newFakeNotifier()
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, notifier)

	b, err := svc.CreateBooking(context.Background(), 42, validInput())

	require.NoError(t, err)
	assert.Equal(t, uint64(42), b.UserID)
	assert.Equal(t, uint64(7), b.HotelID)
	assert.Equal(t, uint64(2), b.Room.ID)
	assert.Equal(t, "Deluxe Double", b.Room.Name)
	assert.Equal(t, uint32(100_00), b.Room.PriceCents)
	assert.Equal(t, uint64(200_00), b.TotalCents) // 2 nights x 100.00
	assert.Equal(t, model.BookingStatusPending, b.Status)
	assert.Equal(t, model.PaymentStatusPending, b.PaymentStatus)
	assert.NotEmpty(t, b.Reference)

	select {
	case ev := <-notifier.created:
		assert.Equal(t, b.ID, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("expected created notification")
	}
}

func TestCreateBooking_PartialDayRoundsUp(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	in := validInput()
	in.CheckIn = "2026-09-10T15:00:00Z"
	in.CheckOut = "2026-09-12T11:00:00Z" // 44h span bills as 2 nights

	b, err := svc.CreateBooking(context.Background(), 42, in)

	require.NoError(t, err)
	assert.Equal(t, uint64(200_00), b.TotalCents)
}

func TestCreateBooking_VeryLongStayDoesNotWrap(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	in := validInput()
	in.CheckIn = "2027-01-01"
	in.CheckOut = "9999-01-01"

	b, err := svc.CreateBooking(context.Background(), 42, in)

	require.NoError(t, err)
	checkIn := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	want := uint64(checkOut.Sub(checkIn).Hours()/24) * 100_00
	assert.Equal(t, want, b.TotalCents)
	// the exact product is far past 32 bits; a truncating multiply
	// would have folded it back under this line
	assert.Greater(t, b.TotalCents, uint64(1)<<32)
}

func TestCreateBooking_InvalidIDs(t *testing.T) {
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, &fakeStore{}, nil)

	in := validInput()
	in.HotelID = 0
	_, err := svc.CreateBooking(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrInvalidID)

	in = validInput()
	in.RoomID = 0
	_, err = svc.CreateBooking(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestCreateBooking_DateValidation(t *testing.T) {
	catalog := &fakeCatalog{hotel: testHotel()}
	svc := newTestService(catalog, &fakeStore{}, nil)

	in := validInput()
	in.CheckIn = "not-a-date"
	_, err := svc.CreateBooking(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrInvalidDates)

	in = validInput()
	in.CheckIn = "2026-08-01" // before now
	_, err = svc.CreateBooking(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrCheckInPast)

	in = validInput()
	in.CheckOut = in.CheckIn
	_, err = svc.CreateBooking(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrCheckOutNotAfter)

	// Date validation runs before any catalog lookup
	assert.Zero(t, catalog.calls)
}

func TestCreateBooking_HotelNotFound(t *testing.T) {
	svc := newTestService(&fakeCatalog{err: repository.ErrHotelNotFound}, &fakeStore{}, nil)

	_, err := svc.CreateBooking(context.Background(), 42, validInput())

	assert.ErrorIs(t, err, ErrHotelNotFound)
}

func TestCreateBooking_RoomNotFound(t *testing.T) {
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, &fakeStore{}, nil)

	in := validInput()
	in.RoomID = 99
	_, err := svc.CreateBooking(context.Background(), 42, in)

	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCreateBooking_OverlapRejectsBeforeReserve(t *testing.T) {
	store := &fakeStore{overlaps: []model.Booking{{ID: 5}}}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	_, err := svc.CreateBooking(context.Background(), 42, validInput())

	assert.ErrorIs(t, err, ErrRoomUnavailable)
	assert.Zero(t, store.reserveCalls)
}

func TestCreateBooking_ReserveLosesRace(t *testing.T) {
	store := &fakeStore{reserveErr: repository.ErrRoomUnavailable}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	_, err := svc.CreateBooking(context.Background(), 42, validInput())

	assert.ErrorIs(t, err, ErrRoomUnavailable)
}

func TestCreateBooking_GuestValidation(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	in := validInput()
	in.Guests = model.Guests{Adults: 0}
	_, err := svc.CreateBooking(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrNoAdults)

	in = validInput()
	in.Guests = model.Guests{Adults: 1, Children: -1}
	_, err = svc.CreateBooking(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrInvalidGuests)

	in = validInput()
	in.Guests = model.Guests{Adults: 2, Children: 1} // room sleeps 2
	_, err = svc.CreateBooking(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Contains(t, err.Error(), "maximum capacity is 2 guests")

	// No failed validation may reach the store
	assert.Zero(t, store.reserveCalls)
}

func TestGetBooking_NotFound(t *testing.T) {
	store := &fakeStore{getErr: sql.ErrNoRows}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	_, err := svc.GetBooking(context.Background(), 42, 9)

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetBooking_OwnedByCaller(t *testing.T) {
	want := &model.BookingWithHotel{
		Booking: model.Booking{ID: 9, UserID: 42, Status: model.BookingStatusPending},
		Hotel:   model.HotelSummary{Name: "Seaside Grand"},
	}
	store := &fakeStore{byID: want}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	got, err := svc.GetBooking(context.Background(), 42, 9)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListBookings(t *testing.T) {
	store := &fakeStore{list: []model.BookingWithHotel{
		{Booking: model.Booking{ID: 2}},
		{Booking: model.Booking{ID: 1}},
	}}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	got, err := svc.ListBookings(context.Background(), 42)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func cancellableBooking(checkIn time.Time) *model.BookingWithHotel {
	return &model.BookingWithHotel{
		Booking: model.Booking{
			ID:      9,
			UserID:  42,
			CheckIn: checkIn,
			Status:  model.BookingStatusConfirmed,
		},
	}
}

func TestCancelBooking_Success(t *testing.T) {
	existing := cancellableBooking(testNow.Add(72 * time.Hour))
	store := &fakeStore{
		byID:    existing,
		updated: &model.Booking{ID: 9, UserID: 42, Status: model.BookingStatusCancelled},
	}
	notifier := newFakeNotifier()
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, notifier)

	got, err := svc.CancelBooking(context.Background(), 42, 9)

	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, got.Status)
	assert.Equal(t, model.BookingStatusCancelled, store.updatedStatus)

	select {
	case ev := <-notifier.cancelled:
		assert.Equal(t, uint64(9), ev.ID)
	case <-time.After(time.Second):
		t.Fatal("expected cancelled notification")
	}
}

func TestCancelBooking_NotFound(t *testing.T) {
	store := &fakeStore{getErr: sql.ErrNoRows}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	_, err := svc.CancelBooking(context.Background(), 42, 9)

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	existing := cancellableBooking(testNow.Add(72 * time.Hour))
	existing.Status = model.BookingStatusCancelled
	store := &fakeStore{byID: existing}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	_, err := svc.CancelBooking(context.Background(), 42, 9)

	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelBooking_TooCloseToCheckIn(t *testing.T) {
	store := &fakeStore{byID: cancellableBooking(testNow.Add(10 * time.Hour))}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	_, err := svc.CancelBooking(context.Background(), 42, 9)

	assert.ErrorIs(t, err, ErrCancellationWindow)
}

func TestCancelBooking_ExactlyAtWindow(t *testing.T) {
	store := &fakeStore{
		byID:    cancellableBooking(testNow.Add(24 * time.Hour)),
		updated: &model.Booking{ID: 9, Status: model.BookingStatusCancelled},
	}
	svc := newTestService(&fakeCatalog{hotel: testHotel()}, store, nil)

	_, err := svc.CancelBooking(context.Background(), 42, 9)

	require.NoError(t, err)
}
