// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrVenueNotFound signals a lookup miss that
// should surface as a 404 rather than a generic database error.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrVenueNotFound is returned when a venue lookup matches no row.
var ErrVenueNotFound = errors.New("venue not found")

// ErrBookingNotFound is returned when a booking lookup matches no row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrDuplicateSlots is returned when seeding slot inventory for a
// venue and day that already has slots at the same start hours.
// Handlers should translate this into an HTTP 409 response.
var ErrDuplicateSlots = errors.New("slots already exist for this venue and date")
