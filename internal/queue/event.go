// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into user notifications.
package queue

// BookingConfirmedEvent is published once per successful reservation,
// covering every slot the call booked.  It carries enough detail for
// downstream consumers to notify or run analytics without touching the
// primary database.
type BookingConfirmedEvent struct {
	Reference           string   `json:"reference"`
	UserID              uint64   `json:"user_id"`
	VenueName           string   `json:"venue_name"`
	Location            string   `json:"location"`
	SlotWindows         []string `json:"slot_windows"`
	BookingIDs          []uint64 `json:"booking_ids"`
	TotalChargedCents   uint32   `json:"total_charged_cents"`
	TotalRemainingCents uint32   `json:"total_remaining_cents"`
	ConfirmedAt         string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID   uint64 `json:"booking_id"`
	UserID      uint64 `json:"user_id"`
	VenueName   string `json:"venue_name"`
	Location    string `json:"location"`
	SlotWindow  string `json:"slot_window"`
	Reason      string `json:"reason"`
	RefundCents uint32 `json:"refund_cents"`
	CancelledAt string `json:"cancelled_at"`
}
