package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/turfly/turf-booking/internal/model"
)

// VenueRepo provides CRUD operations for venues.  Venues belong to
// an owner account; deleting a venue cascades to its slots and
// bookings through foreign keys declared in the schema.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo returns a new VenueRepo bound to the given database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

const venueCols = `id, owner_id, name, location, price_cents, advance_cents,
				   open_hour, close_hour, lunch_from_hour, lunch_to_hour, slot_hours,
				   created_at, updated_at`

func scanVenue(row interface{ Scan(...any) error }) (model.Venue, error) {
	var v model.Venue
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.Name, &v.Location, &v.PriceCents, &v.AdvanceCents,
		&v.OpenHour, &v.CloseHour, &v.LunchFromHour, &v.LunchToHour, &v.SlotHours,
		&v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

// Create inserts a venue and populates the generated ID.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const q = `INSERT INTO venues
			   (owner_id, name, location, price_cents, advance_cents,
				open_hour, close_hour, lunch_from_hour, lunch_to_hour, slot_hours)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		v.OwnerID, v.Name, v.Location, v.PriceCents, v.AdvanceCents,
		v.OpenHour, v.CloseHour, v.LunchFromHour, v.LunchToHour, v.SlotHours)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByID fetches a venue by id.  Returns ErrVenueNotFound when
// no row matches.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (model.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx,
		`SELECT `+venueCols+` FROM venues WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Venue{}, ErrVenueNotFound
	}
	return v, err
}

// GetByIDAndOwner fetches a venue and enforces ownership.  It
// returns ErrVenueNotFound when the venue does not exist and
// ErrForbidden when it belongs to a different owner.
func (r *VenueRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (model.Venue, error) {
	v, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Venue{}, err
	}
	if v.OwnerID != ownerID {
		return model.Venue{}, ErrForbidden
	}
	return v, nil
}

// ListAll returns every venue ordered by name, for public browsing.
func (r *VenueRepo) ListAll(ctx context.Context) ([]model.Venue, error) {
	return r.list(ctx, `SELECT `+venueCols+` FROM venues ORDER BY name`)
}

// ListByOwner returns the venues belonging to one owner, newest first.
func (r *VenueRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Venue, error) {
	return r.list(ctx,
		`SELECT `+venueCols+` FROM venues WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
}

func (r *VenueRepo) list(ctx context.Context, q string, args ...any) ([]model.Venue, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Update rewrites the editable venue fields after verifying
// ownership.  Returns ErrVenueNotFound when no row was touched.
func (r *VenueRepo) Update(ctx context.Context, v model.Venue) error {
	const q = `UPDATE venues SET name = ?, location = ?, price_cents = ?, advance_cents = ?,
			   open_hour = ?, close_hour = ?, lunch_from_hour = ?, lunch_to_hour = ?, slot_hours = ?
			   WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		v.Name, v.Location, v.PriceCents, v.AdvanceCents,
		v.OpenHour, v.CloseHour, v.LunchFromHour, v.LunchToHour, v.SlotHours,
		v.ID, v.OwnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVenueNotFound
	}
	return nil
}

// Delete removes a venue owned by the caller.  Slots and bookings
// go with it via ON DELETE CASCADE.
func (r *VenueRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM venues WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVenueNotFound
	}
	return nil
}
