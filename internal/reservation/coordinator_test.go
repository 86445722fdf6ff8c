package reservation

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turfly/turf-booking/internal/model"
	"github.com/turfly/turf-booking/internal/repository"
)

// ---- fakes -------------------------------------------------------------

type fakeVenues struct {
	venues map[uint64]model.Venue
}

func (f *fakeVenues) GetByID(_ context.Context, id uint64) (model.Venue, error) {
	v, ok := f.venues[id]
	if !ok {
		return model.Venue{}, repository.ErrVenueNotFound
	}
	return v, nil
}

type fakeBookings struct {
	seq          uint64
	rows         map[uint64]model.Booking
	failCreateAt int // fail the Nth Create call (1-based); 0 disables
	createCalls  int
}

func newFakeBookings() *fakeBookings { return &fakeBookings{rows: map[uint64]model.Booking{}} }

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	f.createCalls++
	if f.failCreateAt > 0 && f.createCalls == f.failCreateAt {
		return errors.New("injected create failure")
	}
	f.seq++
	b.ID = f.seq
	f.rows[b.ID] = *b
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	b, ok := f.rows[id]
	if !ok {
		return model.Booking{}, repository.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookings) Delete(_ context.Context, id uint64) error {
	if _, ok := f.rows[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeSlots struct {
	slots      map[uint64]*model.Slot
	bookings   *fakeBookings
	denyCAS    map[uint64]bool // simulate another request winning the flag
	failMark   bool
	failClear  bool
	failAttach bool
}

func newFakeSlots(b *fakeBookings, slots ...model.Slot) *fakeSlots {
	f := &fakeSlots{slots: map[uint64]*model.Slot{}, bookings: b, denyCAS: map[uint64]bool{}}
	for i := range slots {
		s := slots[i]
		f.slots[s.ID] = &s
	}
	return f
}

func (f *fakeSlots) GetByID(_ context.Context, id uint64) (model.Slot, error) {
	s, ok := f.slots[id]
	if !ok {
		return model.Slot{}, errors.New("slot missing")
	}
	return *s, nil
}

func (f *fakeSlots) GetByIDs(_ context.Context, ids []uint64) ([]model.Slot, error) {
	out := make([]model.Slot, 0, len(ids))
	for _, id := range ids {
		if s, ok := f.slots[id]; ok {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSlots) MarkReserved(_ context.Context, id uint64) (bool, error) {
	if f.failMark {
		return false, errors.New("injected mark failure")
	}
	s, ok := f.slots[id]
	if !ok {
		return false, errors.New("slot missing")
	}
	if f.denyCAS[id] || s.Reserved {
		return false, nil
	}
	s.Reserved = true
	return true, nil
}

func (f *fakeSlots) ClearReserved(_ context.Context, id uint64) error {
	if f.failClear {
		return errors.New("injected clear failure")
	}
	if s, ok := f.slots[id]; ok {
		s.Reserved = false
		s.BookingID = nil
	}
	return nil
}

func (f *fakeSlots) AttachBooking(_ context.Context, slotID, bookingID uint64) error {
	if f.failAttach {
		return errors.New("injected attach failure")
	}
	s, ok := f.slots[slotID]
	if !ok || !s.Reserved {
		return errors.New("slot not reserved")
	}
	id := bookingID
	s.BookingID = &id
	return nil
}

func (f *fakeSlots) ListOrphanedReserved(_ context.Context) ([]uint64, error) {
	referenced := map[uint64]bool{}
	for _, b := range f.bookings.rows {
		referenced[b.SlotID] = true
	}
	var out []uint64
	for id, s := range f.slots {
		if s.Reserved && !referenced[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	confirmed []Confirmation
	cancelled []Cancellation
	fail      bool
}

func (f *fakeNotifier) BookingConfirmed(_ context.Context, conf Confirmation) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.confirmed = append(f.confirmed, conf)
	return nil
}

func (f *fakeNotifier) BookingCancelled(_ context.Context, canc Cancellation) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.cancelled = append(f.cancelled, canc)
	return nil
}

// ---- fixture -----------------------------------------------------------

type fixture struct {
	coord    *Coordinator
	venues   *fakeVenues
	slots    *fakeSlots
	bookings *fakeBookings
	notify   *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	venues := &fakeVenues{venues: map[uint64]model.Venue{
		1: {ID: 1, OwnerID: 9, Name: "Greenfield Turf", Location: "Pune", PriceCents: 1000, AdvanceCents: 300},
	}}
	bookings := newFakeBookings()
	slots := newFakeSlots(bookings,
		model.Slot{ID: 10, VenueID: 1, Date: "2025-01-01", StartHour: 10, EndHour: 11},
		model.Slot{ID: 11, VenueID: 1, Date: "2025-01-01", StartHour: 11, EndHour: 12},
		model.Slot{ID: 12, VenueID: 1, Date: "2025-01-01", StartHour: 12, EndHour: 13},
	)
	notify := &fakeNotifier{}
	coord := New(venues, slots, bookings, NewMemoryIdempotencyStore(), notify)
	return &fixture{coord: coord, venues: venues, slots: slots, bookings: bookings, notify: notify}
}

func (fx *fixture) reserved(id uint64) bool { return fx.slots.slots[id].Reserved }

// ---- reserve -----------------------------------------------------------

func TestReserveSuccess(t *testing.T) {
	fx := newFixture(t)

	res, err := fx.coord.Reserve(context.Background(), ReserveRequest{
		VenueID: 1, UserID: 5, SlotIDs: []uint64{10, 11}, AmountCents: 400,
	})
	require.NoError(t, err)
	require.Len(t, res.BookingIDs, 2)
	assert.NotEmpty(t, res.Reference)
	assert.Equal(t, uint32(400), res.TotalChargedCents)
	assert.Equal(t, uint32(1600), res.TotalRemainingCents)

	assert.True(t, fx.reserved(10))
	assert.True(t, fx.reserved(11))
	assert.Len(t, fx.bookings.rows, 2)
	for _, id := range res.BookingIDs {
		b := fx.bookings.rows[id]
		assert.Equal(t, model.BookingConfirmed, b.Status)
		assert.Equal(t, uint32(200), b.ReceivedCents)
		assert.Equal(t, uint32(800), b.RemainingCents)
		assert.Equal(t, res.Reference, b.Reference)
	}
	require.Len(t, fx.notify.confirmed, 1)
	assert.Equal(t, []string{"2025-01-01 10:00-11:00", "2025-01-01 11:00-12:00"}, fx.notify.confirmed[0].SlotWindows)
}

func TestReserveZeroTenderFallsBackToAdvance(t *testing.T) {
	fx := newFixture(t)

	res, err := fx.coord.Reserve(context.Background(), ReserveRequest{
		VenueID: 1, UserID: 5, SlotIDs: []uint64{10},
	})
	require.NoError(t, err)
	b := fx.bookings.rows[res.BookingIDs[0]]
	assert.Equal(t, uint32(300), b.ReceivedCents)
	assert.Equal(t, uint32(700), b.RemainingCents)
}

func TestReserveVenueNotFound(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.coord.Reserve(context.Background(), ReserveRequest{
		VenueID: 99, UserID: 5, SlotIDs: []uint64{10},
	})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestReservePartialInventory(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.coord.Reserve(context.Background(), ReserveRequest{
		VenueID: 1, UserID: 5, SlotIDs: []uint64{10, 777},
	})
	assert.Equal(t, KindPartialInventory, KindOf(err))
	assert.False(t, fx.reserved(10))
	assert.Empty(t, fx.bookings.rows)
}

func TestReserveConflictEnumeratesEveryReservedSlot(t *testing.T) {
	fx := newFixture(t)
	first, err := fx.coord.Reserve(context.Background(), ReserveRequest{
		VenueID: 1, UserID: 5, SlotIDs: []uint64{10, 11}, AmountCents: 400,
	})
	require.NoError(t, err)
	require.Len(t, first.BookingIDs, 2)

	// Second request for the same two slots must list both ids.
	_, err = fx.coord.Reserve(context.Background(), ReserveRequest{
		VenueID: 1, UserID: 6, SlotIDs: []uint64{10, 11}, AmountCents: 400,
	})
	var resErr *Error
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, KindConflict, resErr.Kind)
	assert.ElementsMatch(t, []uint64{10, 11}, resErr.SlotIDs)
	assert.False(t, resErr.Retryable())

	// Loser left no trace: still exactly two bookings, flags intact.
	assert.Len(t, fx.bookings.rows, 2)
	assert.True(t, fx.reserved(10))
	assert.True(t, fx.reserved(11))
}

func TestReserveLostRaceUnwindsEarlierFlags(t *testing.T) {
	fx := newFixture(t)
	fx.slots.denyCAS[11] = true // someone else wins slot 11 between check and set

	_, err := fx.coord.Reserve(context.Background(), ReserveRequest{
		VenueID: 1, UserID: 5, SlotIDs: []uint64{10, 11},
	})
	var resErr *Error
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, KindConflict, resErr.Kind)
	assert.Equal(t, []uint64{11}, resErr.SlotIDs)
	assert.False(t, fx.reserved(10), "flag taken before the lost race must be cleared")
	assert.Empty(t, fx.bookings.rows)
}

func TestReserveRollsBackWhenBookingCreationFailsMidway(t *testing.T) {
	fx := newFixture(t)
	fx.bookings.failCreateAt = 3 // N=2 of M=3 bookings created, then failure

	_, err := fx.coord.Reserve(context.Background(), ReserveRequest{
		VenueID: 1, UserID: 5, SlotIDs: []uint64{10, 11, 12}, AmountCents: 900,
	})
	require.Error(t, err)
	assert.Equal(t, KindWriteFailure, KindOf(err))

	for _, id := range []uint64{10, 11, 12} {
		assert.False(t, fx.reserved(id), "slot %d must be back at reserved=false", id)
	}
	assert.Empty(t, fx.bookings.rows, "no bookings may survive the rollback")
}

func TestReserveIdempotentRetryReturnsOriginalResult(t *testing.T) {
	fx := newFixture(t)
	req := ReserveRequest{
		VenueID: 1, UserID: 5, SlotIDs: []uint64{10, 11},
		AmountCents: 400, IdempotencyToken: "tok-1",
	}

	first, err := fx.coord.Reserve(context.Background(), req)
	require.NoError(t, err)
	second, err := fx.coord.Reserve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.BookingIDs, second.BookingIDs)
	assert.Equal(t, first.Reference, second.Reference)
	assert.Len(t, fx.bookings.rows, 2, "retry must not create more bookings")
}

func TestReserveInFlightDuplicateCollapses(t *testing.T) {
	fx := newFixture(t)
	idem := NewMemoryIdempotencyStore()
	fx.coord.idem = idem
	won, err := idem.Claim(context.Background(), "tok-2")
	require.NoError(t, err)
	require.True(t, won)

	_, err = fx.coord.Reserve(context.Background(), ReserveRequest{
		VenueID: 1, UserID: 5, SlotIDs: []uint64{10}, IdempotencyToken: "tok-2",
	})
	var resErr *Error
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, KindWriteFailure, resErr.Kind)
	assert.True(t, resErr.Retryable())
	assert.False(t, fx.reserved(10))
}

func TestReserveFailureReleasesClaimForRetry(t *testing.T) {
	fx := newFixture(t)
	fx.slots.denyCAS[10] = true

	req := ReserveRequest{VenueID: 1, UserID: 5, SlotIDs: []uint64{10}, IdempotencyToken: "tok-3"}
	_, err := fx.coord.Reserve(context.Background(), req)
	require.Error(t, err)

	// After the conflict resolves, the same token must be usable again.
	fx.slots.denyCAS[10] = false
	res, err := fx.coord.Reserve(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, res.BookingIDs, 1)
}

func TestReserveNotifierFailureDoesNotUnwind(t *testing.T) {
	fx := newFixture(t)
	fx.notify.fail = true

	res, err := fx.coord.Reserve(context.Background(), ReserveRequest{
		VenueID: 1, UserID: 5, SlotIDs: []uint64{10},
	})
	require.NoError(t, err)
	assert.Len(t, res.BookingIDs, 1)
	assert.True(t, fx.reserved(10))
}

// ---- cancel ------------------------------------------------------------

func reserveOne(t *testing.T, fx *fixture, slotID uint64) uint64 {
	t.Helper()
	res, err := fx.coord.Reserve(context.Background(), ReserveRequest{
		VenueID: 1, UserID: 5, SlotIDs: []uint64{slotID}, AmountCents: 300,
	})
	require.NoError(t, err)
	return res.BookingIDs[0]
}

func TestCancelBeforeCutoffFreesSlot(t *testing.T) {
	fx := newFixture(t)
	bookingID := reserveOne(t, fx, 10)

	// Slot starts 2025-01-01 10:00 UTC; 61 minutes before is fine.
	fx.coord.now = func() time.Time { return time.Date(2025, 1, 1, 8, 59, 0, 0, time.UTC) }
	res, err := fx.coord.Cancel(context.Background(), bookingID, 5, "rained out")
	require.NoError(t, err)
	assert.Equal(t, bookingID, res.CancelledBookingID)
	assert.False(t, fx.reserved(10))
	assert.Empty(t, fx.bookings.rows)
	require.Len(t, fx.notify.cancelled, 1)
	assert.Equal(t, "rained out", fx.notify.cancelled[0].Reason)
	assert.Equal(t, uint32(300), fx.notify.cancelled[0].RefundCents)
}

func TestCancelInsideCutoffIsTooLate(t *testing.T) {
	fx := newFixture(t)
	bookingID := reserveOne(t, fx, 10)

	// 59 minutes before start: refused, nothing changes.
	fx.coord.now = func() time.Time { return time.Date(2025, 1, 1, 9, 1, 0, 0, time.UTC) }
	_, err := fx.coord.Cancel(context.Background(), bookingID, 5, "")
	assert.Equal(t, KindTooLate, KindOf(err))
	assert.True(t, fx.reserved(10))
	assert.Len(t, fx.bookings.rows, 1)
}

func TestCancelExactlyAtCutoffIsTooLate(t *testing.T) {
	fx := newFixture(t)
	bookingID := reserveOne(t, fx, 10)

	fx.coord.now = func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) }
	_, err := fx.coord.Cancel(context.Background(), bookingID, 5, "")
	assert.Equal(t, KindTooLate, KindOf(err))
}

func TestCancelUnknownBooking(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.coord.Cancel(context.Background(), 404, 5, "")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCancelForeignBookingLooksMissing(t *testing.T) {
	fx := newFixture(t)
	bookingID := reserveOne(t, fx, 10)

	fx.coord.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	_, err := fx.coord.Cancel(context.Background(), bookingID, 77, "")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, fx.reserved(10))
}

// ---- reconcile ---------------------------------------------------------

func TestCancelWithStuckFlagIsRepairedByReconcile(t *testing.T) {
	fx := newFixture(t)
	bookingID := reserveOne(t, fx, 10)

	fx.coord.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	fx.slots.failClear = true
	res, err := fx.coord.Cancel(context.Background(), bookingID, 5, "")
	require.NoError(t, err, "a stuck flag is recoverable, not a cancel failure")
	assert.Equal(t, bookingID, res.CancelledBookingID)
	assert.Empty(t, fx.bookings.rows)
	assert.True(t, fx.reserved(10), "torn state: booking gone, flag still set")

	fx.slots.failClear = false
	repaired, err := fx.coord.ReconcileOrphanedReservations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	assert.False(t, fx.reserved(10))
}

func TestReconcileLeavesHealthyReservationsAlone(t *testing.T) {
	fx := newFixture(t)
	reserveOne(t, fx, 10)

	repaired, err := fx.coord.ReconcileOrphanedReservations(context.Background())
	require.NoError(t, err)
	assert.Zero(t, repaired)
	assert.True(t, fx.reserved(10))
}

// ---- pricing -----------------------------------------------------------

func TestApportionCents(t *testing.T) {
	assert.Equal(t, []uint32{200, 200}, apportionCents(400, 2, 300))
	assert.Equal(t, []uint32{134, 133, 133}, apportionCents(400, 3, 300))
	assert.Equal(t, []uint32{300, 300}, apportionCents(0, 2, 300))
	assert.Equal(t, uint32(0), remainingCents(500, 900), "overpayment floors at zero")
	assert.Equal(t, uint32(600), remainingCents(1000, 400))
}
