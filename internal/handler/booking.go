package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/turfly/turf-booking/internal/receipt"
	"github.com/turfly/turf-booking/internal/repository"
	"github.com/turfly/turf-booking/internal/reservation"
)

// BookingHandler exposes the reservation coordinator over HTTP
// together with the read-side booking endpoints.  All slot-flag
// and booking-row mutation flows through the coordinator; the
// handler only translates requests and error kinds.
type BookingHandler struct {
	Coordinator *reservation.Coordinator
	BookingRepo *repository.BookingRepo
	UserRepo    *repository.UserRepo
}

// NewBookingHandler constructs a BookingHandler with the provided
// dependencies.  All must be non-nil.
func NewBookingHandler(coord *reservation.Coordinator, bookingRepo *repository.BookingRepo, userRepo *repository.UserRepo) *BookingHandler {
	if coord == nil || bookingRepo == nil || userRepo == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Coordinator: coord, BookingRepo: bookingRepo, UserRepo: userRepo}
}

// reservationError maps a coordinator error onto an HTTP response.
// Conflicts carry the offending slot ids so clients can drop the
// overlaps; write failures advertise retryability.
func reservationError(c echo.Context, err error) error {
	var resErr *reservation.Error
	if !errors.As(err, &resErr) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}
	body := echo.Map{"error": resErr.Detail, "kind": string(resErr.Kind)}
	switch resErr.Kind {
	case reservation.KindInvalidInput:
		return c.JSON(http.StatusBadRequest, body)
	case reservation.KindNotFound, reservation.KindPartialInventory:
		return c.JSON(http.StatusNotFound, body)
	case reservation.KindConflict:
		body["conflicting_slot_ids"] = resErr.SlotIDs
		return c.JSON(http.StatusConflict, body)
	case reservation.KindTooLate:
		return c.JSON(http.StatusConflict, body)
	default: // KindWriteFailure
		body["retryable"] = true
		return c.JSON(http.StatusServiceUnavailable, body)
	}
}

// Reserve handles POST /v1/venues/:id/reserve.  The body carries
// the slot ids, the amount tendered and an optional idempotency
// token; retried requests with the same token replay the original
// outcome.
func (h *BookingHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var body struct {
		SlotIDs          []uint64 `json:"slot_ids"`
		AmountCents      uint32   `json:"amount_cents"`
		IdempotencyToken string   `json:"idempotency_token"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.SlotIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_ids is required"})
	}
	res, err := h.Coordinator.Reserve(c.Request().Context(), reservation.ReserveRequest{
		VenueID:          venueID,
		SlotIDs:          body.SlotIDs,
		UserID:           userID,
		AmountCents:      body.AmountCents,
		IdempotencyToken: strings.TrimSpace(body.IdempotencyToken),
	})
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Cancel handles DELETE /v1/bookings/:id.  An optional reason is
// read from the body and forwarded to the cancellation notice.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&body) // body is optional
	res, err := h.Coordinator.Cancel(c.Request().Context(), bookingID, userID, strings.TrimSpace(body.Reason))
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListMyBookings handles GET /v1/my-bookings.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.BookingRepo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:id for the booking's owner.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	detail, err := h.BookingRepo.GetDetailForUser(c.Request().Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detail})
}

// Receipt handles GET /v1/bookings/:id/receipt and serves a
// plain-text receipt as a download.  Strictly read-only; not part
// of the reservation protocol.
func (h *BookingHandler) Receipt(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	detail, err := h.BookingRepo.GetDetailForUser(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	u, err := h.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch user"})
	}
	body, err := receipt.Render(receipt.Data{
		Reference:      detail.Reference,
		Email:          u.Email,
		VenueName:      detail.VenueName,
		Location:       detail.Location,
		SlotDate:       detail.SlotDate,
		StartHour:      detail.StartHour,
		EndHour:        detail.EndHour,
		ReceivedCents:  detail.ReceivedCents,
		RemainingCents: detail.RemainingCents,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render receipt"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="receipt-`+detail.Reference+`.txt"`)
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, body)
}

// Reconcile handles POST /v1/admin/reconcile: the maintenance hook
// that frees slots whose booking disappeared mid-cancellation.
func (h *BookingHandler) Reconcile(c echo.Context) error {
	repaired, err := h.Coordinator.ReconcileOrphanedReservations(c.Request().Context())
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"repaired": repaired})
}
