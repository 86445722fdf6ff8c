package model

import "time"

// Venue represents a bookable turf facility owned by a single
// owner account.  Pricing and the daily slot layout are part of
// the venue configuration; slots are generated from it per day.
//
// Fields:
//  ID            – primary key identifier.
//  OwnerID       – user who owns and manages the venue.
//  Name          – display name of the turf.
//  Location      – human-readable address or area.
//  PriceCents    – full price of one slot in cents.
//  AdvanceCents  – advance collected per slot when booking.
//  OpenHour      – first hour of the day a slot may start (0–23).
//  CloseHour     – hour by which every slot must end.
//  LunchFromHour – start of the daily lunch-break window.
//  LunchToHour   – end of the lunch-break window; equal values
//                  disable the break entirely.
//  SlotHours     – duration of a single slot in whole hours.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Venue struct {
	ID            uint64    // venues.id
	OwnerID       uint64    // venues.owner_id
	Name          string    // venues.name
	Location      string    // venues.location
	PriceCents    uint32    // venues.price_cents
	AdvanceCents  uint32    // venues.advance_cents
	OpenHour      uint8     // venues.open_hour
	CloseHour     uint8     // venues.close_hour
	LunchFromHour uint8     // venues.lunch_from_hour
	LunchToHour   uint8     // venues.lunch_to_hour
	SlotHours     uint8     // venues.slot_hours
	CreatedAt     time.Time // venues.created_at
	UpdatedAt     time.Time // venues.updated_at
}
