package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/turfly/turf-booking/internal/handler"    // handlers implementing the endpoints
	"github.com/turfly/turf-booking/internal/middleware" // JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// used by load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Session-less operations: register, login, refresh, logout.  Each
	// handler generates or exchanges tokens on its own.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and issues a new pair.
	g.POST("/refresh", a.Refresh)
	// Logout takes a refresh_token in the body and revokes it; no JWT
	// required so an expired session can still be terminated.
	g.POST("/logout", a.Logout)

	// Protected profile endpoint.  Both roles may read their own profile.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("OWNER", "USER"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints.  The
// PublicHandler returns sanitized venue and slot data so guests can
// inspect availability before registering.  No JWT or role middleware
// applies here.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	// All venues on the platform
	e.GET("/v1/venues", p.GetPublicVenues)
	// One venue's details
	e.GET("/v1/venues/:id", p.GetPublicVenue)
	// One venue's slot inventory for a day (?date=YYYY-MM-DD, default today)
	e.GET("/v1/venues/:id/slots", p.GetPublicVenueSlots)
}
