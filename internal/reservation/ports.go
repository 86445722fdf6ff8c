package reservation

import (
	"context"

	"github.com/turfly/turf-booking/internal/model"
)

// VenueStore is the read-side view of venues the coordinator needs.
type VenueStore interface {
	GetByID(ctx context.Context, id uint64) (model.Venue, error)
}

// SlotStore exposes slot inventory to the coordinator.
// MarkReserved must have compare-and-set semantics: it only
// succeeds when the slot is currently free and reports whether the
// caller won the flag.  ClearReserved must be idempotent.
type SlotStore interface {
	GetByID(ctx context.Context, id uint64) (model.Slot, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]model.Slot, error)
	MarkReserved(ctx context.Context, slotID uint64) (bool, error)
	ClearReserved(ctx context.Context, slotID uint64) error
	AttachBooking(ctx context.Context, slotID, bookingID uint64) error
	ListOrphanedReserved(ctx context.Context) ([]uint64, error)
}

// BookingStore exposes booking rows to the coordinator.  Delete
// returns repository.ErrBookingNotFound semantics through the
// concrete implementation; the coordinator treats a vanished row
// as already compensated.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	Delete(ctx context.Context, id uint64) error
}

// IdempotencyStore collapses retried reserve calls.  Claim is a
// set-if-absent on the token; the winner proceeds and either
// SaveResult (success) or Release (failure) so a later retry can
// run.  GetResult returns the stored outcome of a finished call.
type IdempotencyStore interface {
	Claim(ctx context.Context, token string) (bool, error)
	Release(ctx context.Context, token string) error
	SaveResult(ctx context.Context, token string, res *ReserveResult) error
	GetResult(ctx context.Context, token string) (*ReserveResult, bool, error)
}

// Notifier delivers confirmation and cancellation records to the
// notification pipeline.  Failures are logged by the coordinator
// and never unwind a booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, conf Confirmation) error
	BookingCancelled(ctx context.Context, canc Cancellation) error
}
