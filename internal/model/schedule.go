package model

import (
	"errors"
	"time"
)

// Schedule validation errors returned by ValidateHours.
var (
	ErrBadHours    = errors.New("open hour must be before close hour and within 0-24")
	ErrBadDuration = errors.New("slot duration must be at least one hour")
	ErrBadLunch    = errors.New("lunch window must lie within operating hours")
)

// ValidateHours checks that a venue's daily layout can produce at
// least one slot.  A zero-width lunch window (from == to) disables
// the break.
func (v Venue) ValidateHours() error {
	if v.OpenHour >= v.CloseHour || v.CloseHour > 24 {
		return ErrBadHours
	}
	if v.SlotHours == 0 {
		return ErrBadDuration
	}
	if v.LunchFromHour != v.LunchToHour {
		if v.LunchFromHour > v.LunchToHour ||
			v.LunchFromHour < v.OpenHour || v.LunchToHour > v.CloseHour {
			return ErrBadLunch
		}
	}
	return nil
}

// GenerateDaySlots builds the full slot inventory for one venue
// and calendar date.  Slots start at the venue open hour, step by
// the slot duration and must end by the close hour.  Any slot that
// overlaps the lunch-break window is skipped.  All generated slots
// are free; IDs are assigned by the database on insert.
func GenerateDaySlots(v Venue, date time.Time) []Slot {
	day := date.UTC().Format("2006-01-02")
	step := v.SlotHours
	out := make([]Slot, 0, (v.CloseHour-v.OpenHour)/step)
	for h := v.OpenHour; h+step <= v.CloseHour; h += step {
		end := h + step
		if v.LunchFromHour != v.LunchToHour && h < v.LunchToHour && end > v.LunchFromHour {
			continue
		}
		out = append(out, Slot{
			VenueID:   v.ID,
			Date:      day,
			StartHour: h,
			EndHour:   end,
		})
	}
	return out
}
