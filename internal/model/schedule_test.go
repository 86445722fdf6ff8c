package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func venueFixture() Venue {
	return Venue{
		ID:            7,
		OpenHour:      6,
		CloseHour:     22,
		LunchFromHour: 13,
		LunchToHour:   14,
		SlotHours:     1,
	}
}

func TestGenerateDaySlots_SkipsLunchWindow(t *testing.T) {
	v := venueFixture()
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	slots := GenerateDaySlots(v, day)

	// 06..22 yields 16 hourly slots, minus the 13-14 break.
	require.Len(t, slots, 15)
	for _, s := range slots {
		assert.Equal(t, "2025-01-01", s.Date)
		assert.Equal(t, v.ID, s.VenueID)
		assert.False(t, s.Reserved)
		assert.NotEqual(t, uint8(13), s.StartHour)
	}
	assert.Equal(t, uint8(6), slots[0].StartHour)
	assert.Equal(t, uint8(21), slots[len(slots)-1].StartHour)
	assert.Equal(t, uint8(22), slots[len(slots)-1].EndHour)
}

func TestGenerateDaySlots_TwoHourSlotsEndByClose(t *testing.T) {
	v := venueFixture()
	v.SlotHours = 2
	v.CloseHour = 21 // odd close hour: last 2h slot must end at 20
	v.LunchFromHour, v.LunchToHour = 0, 0

	slots := GenerateDaySlots(v, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	require.NotEmpty(t, slots)
	last := slots[len(slots)-1]
	assert.LessOrEqual(t, last.EndHour, uint8(21))
	for _, s := range slots {
		assert.Equal(t, uint8(2), s.EndHour-s.StartHour)
	}
}

func TestValidateHours(t *testing.T) {
	v := venueFixture()
	assert.NoError(t, v.ValidateHours())

	bad := v
	bad.OpenHour, bad.CloseHour = 10, 10
	assert.ErrorIs(t, bad.ValidateHours(), ErrBadHours)

	bad = v
	bad.SlotHours = 0
	assert.ErrorIs(t, bad.ValidateHours(), ErrBadDuration)

	bad = v
	bad.LunchFromHour, bad.LunchToHour = 5, 7 // starts before open
	assert.ErrorIs(t, bad.ValidateHours(), ErrBadLunch)
}

func TestSlotStartsAtAndWindow(t *testing.T) {
	s := Slot{ID: 1, Date: "2025-01-01", StartHour: 10, EndHour: 11}
	at, err := s.StartsAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), at)
	assert.Equal(t, "2025-01-01 10:00-11:00", s.Window())

	_, err = Slot{ID: 2, Date: "bogus"}.StartsAt()
	assert.Error(t, err)
}
