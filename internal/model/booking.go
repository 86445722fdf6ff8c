package model

import "time"

// Booking status values.  Cancellation deletes the row rather
// than flipping to CANCELLED; the constant exists because the
// column is an enum and historical rows may carry it.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking records a user's reservation of exactly one slot.  A
// multi-slot reservation produces one booking per slot, all
// created in the same coordinator call.
//
// Fields:
//  ID             – primary key identifier.
//  Reference      – opaque id shared by bookings of one reserve
//                   call; used on receipts and notifications.
//  UserID         – user who booked.
//  VenueID        – venue of the booked slot.
//  SlotID         – the reserved slot (one-to-one).
//  Status         – PENDING, CONFIRMED or CANCELLED.
//  ReceivedCents  – amount collected for this slot.
//  RemainingCents – slot price minus ReceivedCents.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Booking struct {
	ID             uint64    // bookings.id
	Reference      string    // bookings.reference
	UserID         uint64    // bookings.user_id
	VenueID        uint64    // bookings.venue_id
	SlotID         uint64    // bookings.slot_id
	Status         string    // bookings.status
	ReceivedCents  uint32    // bookings.received_cents
	RemainingCents uint32    // bookings.remaining_cents
	CreatedAt      time.Time // bookings.created_at
	UpdatedAt      time.Time // bookings.updated_at
}
