package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/seat-hold-engine/internal/handler"
)

// RegisterRoutes registers operational endpoints: the health check used by
// load balancers and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterPublic registers unauthenticated browse endpoints.  Only the show
// list goes through the response cache; the seat map changes with every
// hold and is always read live.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/v1/shows", p.ListShows, cache)
	} else {
		e.GET("/v1/shows", p.ListShows)
	}
	e.GET("/v1/shows/:id", p.GetShow)
	e.GET("/v1/shows/:id/seats", p.GetShowSeats)
}

// RegisterBooking registers the reservation endpoints.  Reserve and confirm
// sit behind the rate limiter when one is given.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, limiter echo.MiddlewareFunc) {
	var mws []echo.MiddlewareFunc
	if limiter != nil {
		mws = append(mws, limiter)
	}
	g := e.Group("/v1")
	g.POST("/reserve", h.Reserve, mws...)
	g.POST("/confirm", h.Confirm, mws...)
	g.GET("/bookings/:id", h.GetBooking)
}
