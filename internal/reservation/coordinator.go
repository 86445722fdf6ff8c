package reservation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/turfly/turf-booking/internal/model"
	"github.com/turfly/turf-booking/internal/repository"
)

// CancelCutoff is how long before slot start a booking may still
// be cancelled.  The cutoff is computed from the slot's date and
// start hour, never from when the booking was created.
const CancelCutoff = time.Hour

// ReserveRequest carries everything needed to reserve a set of
// slots on one venue in a single atomic decision.
type ReserveRequest struct {
	VenueID          uint64
	SlotIDs          []uint64
	UserID           uint64
	AmountCents      uint32
	IdempotencyToken string
}

// ReserveResult is the caller-visible outcome of a successful
// reserve call.  It is JSON-serializable so the idempotency store
// can replay it verbatim on a retried request.
type ReserveResult struct {
	Reference           string   `json:"reference"`
	BookingIDs          []uint64 `json:"booking_ids"`
	TotalChargedCents   uint32   `json:"total_charged_cents"`
	TotalRemainingCents uint32   `json:"total_remaining_cents"`
}

// CancelResult reports a completed cancellation.
type CancelResult struct {
	CancelledBookingID uint64 `json:"cancelled_booking_id"`
}

// Confirmation is the record emitted after a successful reserve
// for the notification pipeline to deliver.
type Confirmation struct {
	Reference           string   `json:"reference"`
	UserID              uint64   `json:"user_id"`
	VenueName           string   `json:"venue_name"`
	Location            string   `json:"location"`
	SlotWindows         []string `json:"slot_windows"`
	BookingIDs          []uint64 `json:"booking_ids"`
	TotalChargedCents   uint32   `json:"total_charged_cents"`
	TotalRemainingCents uint32   `json:"total_remaining_cents"`
}

// Cancellation is the record emitted after a completed cancel.
type Cancellation struct {
	BookingID   uint64 `json:"booking_id"`
	UserID      uint64 `json:"user_id"`
	VenueName   string `json:"venue_name"`
	Location    string `json:"location"`
	SlotWindow  string `json:"slot_window"`
	Reason      string `json:"reason"`
	RefundCents uint32 `json:"refund_cents"`
}

// Coordinator owns the reserved flag and booking existence.  All
// mutation of either goes through Reserve, Cancel or the
// reconciliation pass; nothing else in the system writes them.
type Coordinator struct {
	venues   VenueStore
	slots    SlotStore
	bookings BookingStore
	idem     IdempotencyStore
	notifier Notifier
	now      func() time.Time
}

// New constructs a Coordinator.  notifier may be nil when no
// notification pipeline is wired (tests, maintenance tools).
func New(venues VenueStore, slots SlotStore, bookings BookingStore, idem IdempotencyStore, notifier Notifier) *Coordinator {
	if venues == nil || slots == nil || bookings == nil || idem == nil {
		panic("nil store passed to reservation.New")
	}
	return &Coordinator{
		venues:   venues,
		slots:    slots,
		bookings: bookings,
		idem:     idem,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// compensation is one reversible forward action.  Successful
// writes push their undo here; on failure the stack unwinds in
// reverse, logging and continuing past partial-unwind errors so a
// single stuck row cannot block the rest of the rollback.
type compensation struct {
	desc string
	undo func(ctx context.Context) error
}

func unwind(ctx context.Context, stack []compensation) {
	for i := len(stack) - 1; i >= 0; i-- {
		if err := stack[i].undo(ctx); err != nil {
			log.Printf("reservation: compensation failed (%s): %v", stack[i].desc, err)
		}
	}
}

// Reserve atomically books the requested slots from the caller's
// perspective.  The slot flags are taken one by one with
// compare-and-set; any failure reverses every write already made
// before the error surfaces, so later readers never observe a
// partial reservation.
func (c *Coordinator) Reserve(ctx context.Context, req ReserveRequest) (*ReserveResult, error) {
	if req.VenueID == 0 || req.UserID == 0 {
		return nil, errInvalidInput("venue and user are required")
	}
	slotIDs := dedupe(req.SlotIDs)
	if len(slotIDs) == 0 {
		return nil, errInvalidInput("at least one slot id is required")
	}

	claimed := false
	if req.IdempotencyToken != "" {
		if res, ok, err := c.idem.GetResult(ctx, req.IdempotencyToken); err != nil {
			log.Printf("reservation: idempotency lookup failed: %v", err)
		} else if ok {
			return res, nil
		}
		won, err := c.idem.Claim(ctx, req.IdempotencyToken)
		if err != nil {
			log.Printf("reservation: idempotency claim failed: %v", err)
		} else if !won {
			// A duplicate of this request is still running; the CAS
			// below would double-book if both proceeded.
			return nil, errWriteFailure("reservation with this token is already in progress")
		} else {
			claimed = true
		}
	}
	releaseClaim := func() {
		if claimed {
			if err := c.idem.Release(ctx, req.IdempotencyToken); err != nil {
				log.Printf("reservation: idempotency release failed: %v", err)
			}
		}
	}

	venue, err := c.venues.GetByID(ctx, req.VenueID)
	if err != nil {
		releaseClaim()
		if errors.Is(err, repository.ErrVenueNotFound) {
			return nil, errNotFound("venue %d not found", req.VenueID)
		}
		return nil, errWriteFailure("venue lookup failed: %v", err)
	}

	slots, err := c.slots.GetByIDs(ctx, slotIDs)
	if err != nil {
		releaseClaim()
		return nil, errWriteFailure("slot lookup failed: %v", err)
	}
	if len(slots) != len(slotIDs) {
		releaseClaim()
		return nil, errPartialInventory("%d of %d requested slots exist", len(slots), len(slotIDs))
	}
	var conflicts []uint64
	for _, s := range slots {
		if s.VenueID != venue.ID {
			releaseClaim()
			return nil, errInvalidInput("slot does not belong to the requested venue")
		}
		if s.Reserved {
			conflicts = append(conflicts, s.ID)
		}
	}
	if len(conflicts) > 0 {
		releaseClaim()
		return nil, errConflict(conflicts)
	}

	// Reservation phase: take each flag with compare-and-set.  A
	// lost race or write error reverses the flags already taken.
	var stack []compensation
	for _, s := range slots {
		slotID := s.ID
		won, err := c.slots.MarkReserved(ctx, slotID)
		if err != nil {
			unwind(ctx, stack)
			releaseClaim()
			return nil, errWriteFailure("reserving slot %d failed: %v", slotID, err)
		}
		if !won {
			unwind(ctx, stack)
			releaseClaim()
			return nil, errConflict([]uint64{slotID})
		}
		stack = append(stack, compensation{
			desc: "clear slot flag",
			undo: func(ctx context.Context) error { return c.slots.ClearReserved(ctx, slotID) },
		})
	}

	// Booking-creation phase: one confirmed booking per slot.  A
	// failure here rolls back the bookings created so far and then
	// the slot flags, restoring the pre-call state exactly.
	received := apportionCents(req.AmountCents, len(slots), venue.AdvanceCents)
	reference := uuid.NewString()
	result := &ReserveResult{Reference: reference, BookingIDs: make([]uint64, 0, len(slots))}
	windows := make([]string, 0, len(slots))
	for i, s := range slots {
		b := &model.Booking{
			Reference:      reference,
			UserID:         req.UserID,
			VenueID:        venue.ID,
			SlotID:         s.ID,
			Status:         model.BookingConfirmed,
			ReceivedCents:  received[i],
			RemainingCents: remainingCents(venue.PriceCents, received[i]),
		}
		if err := c.bookings.Create(ctx, b); err != nil {
			unwind(ctx, stack)
			releaseClaim()
			return nil, errWriteFailure("creating booking for slot %d failed: %v", s.ID, err)
		}
		bookingID := b.ID
		stack = append(stack, compensation{
			desc: "delete booking",
			undo: func(ctx context.Context) error { return c.bookings.Delete(ctx, bookingID) },
		})
		if err := c.slots.AttachBooking(ctx, s.ID, b.ID); err != nil {
			unwind(ctx, stack)
			releaseClaim()
			return nil, errWriteFailure("linking booking %d to slot %d failed: %v", b.ID, s.ID, err)
		}
		result.BookingIDs = append(result.BookingIDs, b.ID)
		result.TotalChargedCents += b.ReceivedCents
		result.TotalRemainingCents += b.RemainingCents
		windows = append(windows, s.Window())
	}

	if req.IdempotencyToken != "" {
		if err := c.idem.SaveResult(ctx, req.IdempotencyToken, result); err != nil {
			log.Printf("reservation: idempotency save failed: %v", err)
		}
	}

	if c.notifier != nil {
		conf := Confirmation{
			Reference:           reference,
			UserID:              req.UserID,
			VenueName:           venue.Name,
			Location:            venue.Location,
			SlotWindows:         windows,
			BookingIDs:          result.BookingIDs,
			TotalChargedCents:   result.TotalChargedCents,
			TotalRemainingCents: result.TotalRemainingCents,
		}
		if err := c.notifier.BookingConfirmed(ctx, conf); err != nil {
			log.Printf("reservation: confirmation notify failed (booking stands): %v", err)
		}
	}
	return result, nil
}

// Cancel deletes a booking and frees its slot.  It refuses inside
// the cutoff window.  The booking row is deleted first; if the
// slot flag cannot be cleared afterwards the inconsistency is
// recoverable and left to ReconcileOrphanedReservations.
func (c *Coordinator) Cancel(ctx context.Context, bookingID, callerID uint64, reason string) (*CancelResult, error) {
	if bookingID == 0 {
		return nil, errInvalidInput("booking id is required")
	}
	b, err := c.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, errNotFound("booking %d not found", bookingID)
		}
		return nil, errWriteFailure("booking lookup failed: %v", err)
	}
	// Foreign bookings are reported as missing so they are not
	// discoverable by probing ids.
	if b.UserID != callerID {
		return nil, errNotFound("booking %d not found", bookingID)
	}
	slot, err := c.slots.GetByID(ctx, b.SlotID)
	if err != nil {
		return nil, errWriteFailure("slot lookup failed: %v", err)
	}
	startsAt, err := slot.StartsAt()
	if err != nil {
		return nil, errWriteFailure("slot start time unreadable: %v", err)
	}
	if !c.now().Before(startsAt.Add(-CancelCutoff)) {
		return nil, errTooLate("bookings can only be cancelled more than an hour before the slot starts")
	}

	if err := c.bookings.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			// Lost a race with another cancel of the same booking;
			// the outcome the caller wanted already holds.
			return &CancelResult{CancelledBookingID: bookingID}, nil
		}
		return nil, errWriteFailure("deleting booking %d failed: %v", bookingID, err)
	}
	if err := c.slots.ClearReserved(ctx, b.SlotID); err != nil {
		log.Printf("reservation: slot %d flag not cleared after cancel (reconciliation will repair): %v", b.SlotID, err)
	}

	if c.notifier != nil {
		canc := Cancellation{
			BookingID:   bookingID,
			UserID:      b.UserID,
			SlotWindow:  slot.Window(),
			Reason:      reason,
			RefundCents: b.ReceivedCents,
		}
		if v, err := c.venues.GetByID(ctx, b.VenueID); err == nil {
			canc.VenueName, canc.Location = v.Name, v.Location
		}
		if err := c.notifier.BookingCancelled(ctx, canc); err != nil {
			log.Printf("reservation: cancellation notify failed: %v", err)
		}
	}
	return &CancelResult{CancelledBookingID: bookingID}, nil
}

// ReconcileOrphanedReservations clears reserved flags whose
// booking no longer exists and returns how many slots were
// repaired.  Individual clear failures are logged and skipped so
// one bad row does not stall the sweep.
func (c *Coordinator) ReconcileOrphanedReservations(ctx context.Context) (int, error) {
	ids, err := c.slots.ListOrphanedReserved(ctx)
	if err != nil {
		return 0, errWriteFailure("orphan scan failed: %v", err)
	}
	repaired := 0
	for _, id := range ids {
		if err := c.slots.ClearReserved(ctx, id); err != nil {
			log.Printf("reservation: reconcile could not clear slot %d: %v", id, err)
			continue
		}
		repaired++
	}
	return repaired, nil
}

func dedupe(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
