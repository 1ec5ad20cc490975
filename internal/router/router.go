package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/concert-ticket-reservation/internal/handler"
	"github.com/iliyamo/concert-ticket-reservation/internal/middleware"
)

// Options carries the cross-cutting pieces route registration needs.
// Redis may be nil, in which case rate limiting and response caching
// are disabled.
type Options struct {
	JWTSecret       string
	Redis           *redis.Client
	RateLimitPerMin int
	CatalogCacheTTL time.Duration
}

// Register wires every route of the service onto the Echo instance.
//
// Public:        health check and the ticket-type catalogue.
// Authenticated: reservation operations for customers.
// Admin:         ticket-type CRUD and the manual expired release.
func Register(e *echo.Echo, res *handler.ReservationHandler, tt *handler.TicketTypeHandler, opts Options) {
	e.GET("/healthz", handler.Health)

	// Public catalogue, cached briefly: it is read-heavy and
	// tolerates short staleness.
	e.GET("/v1/concerts/:id/ticket-types", tt.ListByConcert,
		middleware.CacheJSON(opts.Redis, opts.CatalogCacheTTL))

	// Customer endpoints require a valid access token.
	auth := e.Group("/v1/tickets")
	auth.Use(middleware.JWTAuth(opts.JWTSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	auth.POST("/reserve", res.Reserve, middleware.RateLimit(opts.Redis, opts.RateLimitPerMin))
	auth.POST("/classify", res.ClassifySeats)
	auth.GET("/reservations", res.ListReservations)

	// Admin endpoints additionally require the ADMIN role.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(opts.JWTSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.POST("/concerts/:id/ticket-types", tt.Create)
	admin.PUT("/ticket-types/:id", tt.Update)
	admin.DELETE("/ticket-types/:id", tt.Delete)
	admin.POST("/tickets/release-expired", res.ReleaseExpired)
}
