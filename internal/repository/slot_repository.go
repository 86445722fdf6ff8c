package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/turfly/turf-booking/internal/model"
)

// SlotRepo provides data access to the slots table.  The reserved
// flag is the shared resource of the whole system: it is only
// flipped through MarkReserved/ClearReserved so that the
// reservation coordinator stays the single writer.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

const slotCols = `id, venue_id, DATE_FORMAT(slot_date, '%Y-%m-%d'), start_hour, end_hour,
				  is_reserved, booking_id, created_at, updated_at`

func scanSlot(row interface{ Scan(...any) error }) (model.Slot, error) {
	var (
		s         model.Slot
		bookingID sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.VenueID, &s.Date, &s.StartHour, &s.EndHour,
		&s.Reserved, &bookingID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.Slot{}, err
	}
	if bookingID.Valid {
		id := uint64(bookingID.Int64)
		s.BookingID = &id
	}
	return s, nil
}

// CreateBulk inserts a day's generated slots in one statement.
// The unique key on (venue_id, slot_date, start_hour) rejects
// re-seeding a day; that case surfaces as ErrDuplicateSlots.
// Passing an empty slice has no effect and returns nil.
func (r *SlotRepo) CreateBulk(ctx context.Context, slots []model.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	query := `INSERT INTO slots (venue_id, slot_date, start_hour, end_hour) VALUES `
	args := make([]interface{}, 0, len(slots)*4)
	for i, s := range slots {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, s.VenueID, s.Date, s.StartHour, s.EndHour)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrDuplicateSlots
		}
		return err
	}
	return nil
}

// GetByID fetches a single slot.  sql.ErrNoRows passes through to
// the caller for not-found handling.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (model.Slot, error) {
	return scanSlot(r.db.QueryRowContext(ctx,
		`SELECT `+slotCols+` FROM slots WHERE id = ?`, id))
}

// GetByIDs fetches the slots matching the given id set.  Missing
// ids are simply absent from the result; the caller compares
// counts to detect partial resolution.  Results keep a stable
// order by date and start hour.
func (r *SlotRepo) GetByIDs(ctx context.Context, ids []uint64) ([]model.Slot, error) {
	if len(ids) == 0 {
		return []model.Slot{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT ` + slotCols + ` FROM slots WHERE id IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY slot_date, start_hour`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Slot, 0, len(ids))
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByVenueAndDate returns a venue's slots for one calendar day
// ordered by start hour.  Used by the public browse endpoints.
func (r *SlotRepo) ListByVenueAndDate(ctx context.Context, venueID uint64, date string) ([]model.Slot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+slotCols+` FROM slots WHERE venue_id = ? AND slot_date = ? ORDER BY start_hour`,
		venueID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkReserved flips the reserved flag with compare-and-set
// semantics: the update only applies when the slot is currently
// free.  It reports whether this caller won the flag.  A false
// return with nil error means another reservation got there first.
func (r *SlotRepo) MarkReserved(ctx context.Context, slotID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE slots SET is_reserved = 1 WHERE id = ? AND is_reserved = 0`, slotID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ClearReserved releases a slot back to the free pool and detaches
// any booking reference.  It is idempotent: clearing an already
// free slot is a no-op.
func (r *SlotRepo) ClearReserved(ctx context.Context, slotID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE slots SET is_reserved = 0, booking_id = NULL WHERE id = ?`, slotID)
	return err
}

// AttachBooking links a reserved slot to the booking that holds
// it.  Guarded on is_reserved so a concurrent cancellation cannot
// resurrect a released slot.
func (r *SlotRepo) AttachBooking(ctx context.Context, slotID, bookingID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE slots SET booking_id = ? WHERE id = ? AND is_reserved = 1`, bookingID, slotID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListOrphanedReserved finds slots still flagged reserved whose
// booking row no longer exists.  These are the torn states left
// behind when a cancellation deleted the booking but failed to
// clear the flag; the reconciliation pass repairs them.
func (r *SlotRepo) ListOrphanedReserved(ctx context.Context) ([]uint64, error) {
	const q = `SELECT s.id FROM slots s
			   LEFT JOIN bookings b ON b.slot_id = s.id AND b.status <> 'CANCELLED'
			   WHERE s.is_reserved = 1 AND b.id IS NULL`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
