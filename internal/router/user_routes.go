package router

import (
	"github.com/labstack/echo/v4"

	"github.com/turfly/turf-booking/internal/handler"
	"github.com/turfly/turf-booking/internal/middleware"
)

// RegisterUser registers player-scoped endpoints under /v1.  All routes
// require a valid JWT and the USER role.  Players reserve slots, cancel
// their own bookings and view what they have booked.
func RegisterUser(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER"),
	)
	// Note: GET /v1/venues, /v1/venues/:id and /v1/venues/:id/slots are
	// registered on the public router so guests can browse availability.
	// Player-specific endpoints begin here.
	g.POST("/venues/:id/reserve", h.Reserve)
	g.GET("/my-bookings", h.ListMyBookings)

	// Booking detail, receipt and cancellation for the booking's owner.
	// Ownership is validated inside the handlers.
	g.GET("/bookings/:id", h.GetBooking)
	g.GET("/bookings/:id/receipt", h.Receipt)
	g.DELETE("/bookings/:id", h.Cancel)
}
