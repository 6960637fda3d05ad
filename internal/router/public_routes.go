package router

import (
	"github.com/labstack/echo/v4"

	"github.com/KaushikAtTrks/events-ticket/internal/handler"
)

// RegisterPublic registers the unauthenticated pass catalog endpoints.
// The cache middleware fronts both routes; it is a passthrough when
// Redis is not configured.
func RegisterPublic(e *echo.Echo, p *handler.PassHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/passes")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("", p.ListPasses)
	g.GET("/:id", p.GetPass)
}
