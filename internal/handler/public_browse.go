// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for the public browsing API. These routes allow
// unauthenticated users to browse venues and their slot inventory without
// requiring authentication. Sensitive fields (owner IDs, timestamps) are
// filtered from responses.

package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/turfly/turf-booking/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated browsing.
// It produces sanitized responses suitable for public consumption.
type PublicHandler struct {
	VenueRepo *repository.VenueRepo
	SlotRepo  *repository.SlotRepo
}

// PublicVenue represents a venue exposed via the public API. It contains
// only safe fields.
type PublicVenue struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	PriceCents   uint32 `json:"price_cents"`
	AdvanceCents uint32 `json:"advance_cents"`
	OpenHour     uint8  `json:"open_hour"`
	CloseHour    uint8  `json:"close_hour"`
	SlotHours    uint8  `json:"slot_hours"`
}

// PublicSlot represents one slot in availability listings.
type PublicSlot struct {
	ID        uint64 `json:"id"`
	Date      string `json:"date"`
	StartHour uint8  `json:"start_hour"`
	EndHour   uint8  `json:"end_hour"`
	Reserved  bool   `json:"reserved"`
}

// GetPublicVenues returns all venues for unauthenticated users.
func (h *PublicHandler) GetPublicVenues(c echo.Context) error {
	venues, err := h.VenueRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicVenue, 0, len(venues))
	for _, v := range venues {
		out = append(out, PublicVenue{
			ID: v.ID, Name: v.Name, Location: v.Location,
			PriceCents: v.PriceCents, AdvanceCents: v.AdvanceCents,
			OpenHour: v.OpenHour, CloseHour: v.CloseHour, SlotHours: v.SlotHours,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicVenue returns a single venue by id.
func (h *PublicHandler) GetPublicVenue(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	v, err := h.VenueRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, PublicVenue{
		ID: v.ID, Name: v.Name, Location: v.Location,
		PriceCents: v.PriceCents, AdvanceCents: v.AdvanceCents,
		OpenHour: v.OpenHour, CloseHour: v.CloseHour, SlotHours: v.SlotHours,
	})
}

// GetPublicVenueSlots lists a venue's slots for one day so users
// can pick free ones before reserving.  The ?date=YYYY-MM-DD query
// parameter defaults to today (UTC).
func (h *PublicHandler) GetPublicVenueSlots(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date := strings.TrimSpace(c.QueryParam("date"))
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	ctx := c.Request().Context()
	if _, err := h.VenueRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	slots, err := h.SlotRepo.ListByVenueAndDate(ctx, id, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, PublicSlot{
			ID: s.ID, Date: s.Date, StartHour: s.StartHour, EndHour: s.EndHour, Reserved: s.Reserved,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "items": out})
}
