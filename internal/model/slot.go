package model

import (
	"fmt"
	"time"
)

// Slot is one fixed unit of bookable inventory belonging to a
// venue: a calendar date plus a start/end hour.  Slots are created
// ahead of time per venue and day and are unique on
// (venue, date, start hour).
//
// Invariant: Reserved is true if and only if exactly one
// non-cancelled booking references this slot.  Only the
// reservation coordinator writes Reserved and BookingID.
//
// Fields:
//  ID        – primary key identifier.
//  VenueID   – venue this slot belongs to.
//  Date      – calendar date in YYYY-MM-DD form (DATE column).
//  StartHour – hour of day the slot begins (0–23).
//  EndHour   – hour of day the slot ends.
//  Reserved  – whether the slot is taken by a booking.
//  BookingID – booking holding the slot (nullable).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Slot struct {
	ID        uint64    // slots.id
	VenueID   uint64    // slots.venue_id
	Date      string    // slots.slot_date
	StartHour uint8     // slots.start_hour
	EndHour   uint8     // slots.end_hour
	Reserved  bool      // slots.is_reserved
	BookingID *uint64   // slots.booking_id (nullable)
	CreatedAt time.Time // slots.created_at
	UpdatedAt time.Time // slots.updated_at
}

// StartsAt returns the UTC instant at which the slot begins,
// derived from the slot date and start hour.  Cancellation
// cutoffs are computed from this value, never from booking
// creation time.
func (s Slot) StartsAt() (time.Time, error) {
	d, err := time.Parse("2006-01-02", s.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("slot %d: bad date %q: %w", s.ID, s.Date, err)
	}
	return d.Add(time.Duration(s.StartHour) * time.Hour), nil
}

// Window formats the slot's time range for confirmations and
// receipts, e.g. "2025-01-01 10:00-11:00".
func (s Slot) Window() string {
	return fmt.Sprintf("%s %02d:00-%02d:00", s.Date, s.StartHour, s.EndHour)
}
