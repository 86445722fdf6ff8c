package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/turfly/turf-booking/internal/handler"    // owner handlers
	"github.com/turfly/turf-booking/internal/middleware" // JWT + role middlewares
)

// RegisterOwner registers OWNER-scoped endpoints under /v1.
// All routes require a valid JWT and OWNER role.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, b *handler.BookingHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// ---- Venues ----
	g.POST("/venues", o.CreateVenue)
	// NOTE: Listing all venues is handled by the public browse API; the
	// owner-scoped list below only returns the caller's own venues.
	g.GET("/owner/venues", o.ListVenues)
	g.PUT("/venues/:id", o.UpdateVenue)
	g.PATCH("/venues/:id", o.UpdateVenue) // allow partial/semantic updates via PATCH as well
	g.DELETE("/venues/:id", o.DeleteVenue)

	// ---- Slot inventory ----
	g.POST("/venues/:id/slots", o.SeedSlots) // seed one day from venue hours

	// ---- Bookings on the owner's venues ----
	g.GET("/venues/:id/bookings", o.ListVenueBookings)

	// ---- Maintenance ----
	// Frees reserved flags whose booking vanished mid-cancellation.
	g.POST("/admin/reconcile", b.Reconcile)
}
