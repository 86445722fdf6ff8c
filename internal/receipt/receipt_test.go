package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderContainsBookingFacts(t *testing.T) {
	body, err := Render(Data{
		Reference:      "a1b2c3",
		Email:          "player@example.com",
		VenueName:      "Greenfield Turf",
		Location:       "Kochi",
		SlotDate:       "2025-01-01",
		StartHour:      9,
		EndHour:        10,
		ReceivedCents:  30050,
		RemainingCents: 69950,
	})
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "a1b2c3")
	assert.Contains(t, out, "player@example.com")
	assert.Contains(t, out, "Greenfield Turf")
	assert.Contains(t, out, "2025-01-01 09:00-10:00")
	assert.Contains(t, out, "300.50")
	assert.Contains(t, out, "699.50")
}

func TestRenderFormatsWholeAmounts(t *testing.T) {
	body, err := Render(Data{ReceivedCents: 100000, RemainingCents: 0, StartHour: 18, EndHour: 20})
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "1000.00")
	assert.Contains(t, out, "0.00")
	assert.Contains(t, out, "18:00-20:00")
}
