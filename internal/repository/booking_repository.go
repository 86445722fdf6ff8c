package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/turfly/turf-booking/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  One booking
// covers exactly one slot; a multi-slot reservation shares a
// reference string across its bookings.  Rows are deleted on
// cancellation rather than soft-cancelled.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `id, reference, user_id, venue_id, slot_id, status,
					 received_cents, remaining_cents, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.Reference, &b.UserID, &b.VenueID, &b.SlotID,
		&b.Status, &b.ReceivedCents, &b.RemainingCents, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create inserts a booking and populates the generated ID.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
			   (reference, user_id, venue_id, slot_id, status, received_cents, remaining_cents)
			   VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.Reference, b.UserID, b.VenueID, b.SlotID, b.Status, b.ReceivedCents, b.RemainingCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID fetches a booking by id.  Returns ErrBookingNotFound
// when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// Delete removes a booking row.  Returns ErrBookingNotFound when
// the row was already gone, which lets a retried cancellation
// report success without double-compensating.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// BookingDetail joins a booking with its venue and slot for
// display to users.  Amounts stay in cents end to end.
type BookingDetail struct {
	ID             uint64 `json:"id"`
	Reference      string `json:"reference"`
	Status         string `json:"status"`
	ReceivedCents  uint32 `json:"received_cents"`
	RemainingCents uint32 `json:"remaining_cents"`
	VenueID        uint64 `json:"venue_id"`
	VenueName      string `json:"venue_name"`
	Location       string `json:"location"`
	SlotID         uint64 `json:"slot_id"`
	SlotDate       string `json:"slot_date"`
	StartHour      uint8  `json:"start_hour"`
	EndHour        uint8  `json:"end_hour"`
}

const detailQ = `SELECT b.id, b.reference, b.status, b.received_cents, b.remaining_cents,
						v.id, v.name, v.location,
						s.id, DATE_FORMAT(s.slot_date, '%Y-%m-%d'), s.start_hour, s.end_hour
				 FROM bookings b
				 JOIN venues v ON v.id = b.venue_id
				 JOIN slots s ON s.id = b.slot_id`

func scanDetail(row interface{ Scan(...any) error }) (BookingDetail, error) {
	var d BookingDetail
	err := row.Scan(&d.ID, &d.Reference, &d.Status, &d.ReceivedCents, &d.RemainingCents,
		&d.VenueID, &d.VenueName, &d.Location,
		&d.SlotID, &d.SlotDate, &d.StartHour, &d.EndHour)
	return d, err
}

// ListByUser returns all bookings of one user with venue and slot
// context, newest first.  An empty slice is returned when the user
// has none.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		detailQ+` WHERE b.user_id = ? ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByVenueForOwner returns all bookings taken on a venue after
// verifying the caller owns it.  ErrVenueNotFound and ErrForbidden
// follow the usual repository conventions.
func (r *BookingRepo) ListByVenueForOwner(ctx context.Context, venueID, ownerID uint64) ([]BookingDetail, error) {
	var actualOwner uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM venues WHERE id = ?`, venueID).Scan(&actualOwner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, err
	}
	if actualOwner != ownerID {
		return nil, ErrForbidden
	}
	rows, err := r.db.QueryContext(ctx,
		detailQ+` WHERE b.venue_id = ? ORDER BY s.slot_date, s.start_hour`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDetailForUser loads one booking with venue and slot context,
// enforcing that it belongs to the calling user.  Returns
// ErrBookingNotFound for both a missing row and a foreign one so
// other users' bookings are not discoverable.
func (r *BookingRepo) GetDetailForUser(ctx context.Context, bookingID, userID uint64) (BookingDetail, error) {
	d, err := scanDetail(r.db.QueryRowContext(ctx,
		detailQ+` WHERE b.id = ? AND b.user_id = ?`, bookingID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return BookingDetail{}, ErrBookingNotFound
	}
	return d, err
}
