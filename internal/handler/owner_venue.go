package handler // handler package contains owner-specific venue handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/turfly/turf-booking/internal/model"
	"github.com/turfly/turf-booking/internal/repository"
)

// OwnerHandler bundles repositories for owners to manage venues,
// seed slot inventory and inspect bookings taken on their turfs.
type OwnerHandler struct {
	VenueRepo   *repository.VenueRepo
	SlotRepo    *repository.SlotRepo
	BookingRepo *repository.BookingRepo
}

// NewOwnerHandler constructs a new OwnerHandler and panics if any dependency is nil.
func NewOwnerHandler(venueRepo *repository.VenueRepo, slotRepo *repository.SlotRepo, bookingRepo *repository.BookingRepo) *OwnerHandler {
	if venueRepo == nil || slotRepo == nil || bookingRepo == nil {
		panic("nil repository passed to NewOwnerHandler")
	}
	return &OwnerHandler{VenueRepo: venueRepo, SlotRepo: slotRepo, BookingRepo: bookingRepo}
}

type venueBody struct {
	Name          string `json:"name"`
	Location      string `json:"location"`
	PriceCents    uint32 `json:"price_cents"`
	AdvanceCents  uint32 `json:"advance_cents"`
	OpenHour      uint8  `json:"open_hour"`
	CloseHour     uint8  `json:"close_hour"`
	LunchFromHour uint8  `json:"lunch_from_hour"`
	LunchToHour   uint8  `json:"lunch_to_hour"`
	SlotHours     uint8  `json:"slot_hours"`
}

func (b venueBody) apply(v *model.Venue) error {
	v.Name = strings.TrimSpace(b.Name)
	v.Location = strings.TrimSpace(b.Location)
	v.PriceCents = b.PriceCents
	v.AdvanceCents = b.AdvanceCents
	v.OpenHour = b.OpenHour
	v.CloseHour = b.CloseHour
	v.LunchFromHour = b.LunchFromHour
	v.LunchToHour = b.LunchToHour
	v.SlotHours = b.SlotHours
	if v.Name == "" {
		return errors.New("name is required")
	}
	if v.AdvanceCents > v.PriceCents {
		return errors.New("advance cannot exceed slot price")
	}
	return v.ValidateHours()
}

// CreateVenue handles POST /v1/venues.
func (h *OwnerHandler) CreateVenue(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body venueBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	venue := model.Venue{OwnerID: ownerID}
	if err := body.apply(&venue); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.VenueRepo.Create(c.Request().Context(), &venue); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "venue name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create venue"})
	}
	return c.JSON(http.StatusCreated, venue)
}

// UpdateVenue handles PUT /v1/venues/:id.
func (h *OwnerHandler) UpdateVenue(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body venueBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	venue := model.Venue{ID: id, OwnerID: ownerID}
	if err := body.apply(&venue); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.VenueRepo.Update(c.Request().Context(), venue); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, _ := h.VenueRepo.GetByID(c.Request().Context(), id)
	return c.JSON(http.StatusOK, updated)
}

// ListVenues handles GET /v1/owner/venues and returns the caller's venues.
func (h *OwnerHandler) ListVenues(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.VenueRepo.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DeleteVenue handles DELETE /v1/venues/:id.  Slots and bookings
// cascade with the venue.
func (h *OwnerHandler) DeleteVenue(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.VenueRepo.Delete(c.Request().Context(), id, ownerID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// SeedSlots handles POST /v1/venues/:id/slots.  It generates the
// full slot inventory for one calendar day from the venue's
// operating hours, skipping the lunch window.
func (h *OwnerHandler) SeedSlots(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Date string `json:"date"` // YYYY-MM-DD
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	day, err := time.Parse("2006-01-02", strings.TrimSpace(body.Date))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	ctx := c.Request().Context()
	venue, err := h.VenueRepo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	slots := model.GenerateDaySlots(venue, day)
	if len(slots) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "venue hours produce no slots"})
	}
	if err := h.SlotRepo.CreateBulk(ctx, slots); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlots) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slots already seeded for this date"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create slots"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"created": len(slots), "date": body.Date})
}

// ListVenueBookings handles GET /v1/venues/:id/bookings for owners.
func (h *OwnerHandler) ListVenueBookings(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	items, err := h.BookingRepo.ListByVenueForOwner(c.Request().Context(), id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
