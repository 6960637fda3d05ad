package router

import (
	"github.com/labstack/echo/v4"

	"github.com/KaushikAtTrks/events-ticket/internal/handler"
	"github.com/KaushikAtTrks/events-ticket/internal/middleware"
	"github.com/KaushikAtTrks/events-ticket/internal/model"
)

// RegisterValidation registers the gate routes for staff and admins.
// The rate limiter sits in front because gate devices retry aggressively
// when a scan misreads; it is a passthrough when Redis is absent.
func RegisterValidation(e *echo.Echo, v *handler.ValidationHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/validate")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStaff, model.RoleAdmin))
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/qr", v.ValidateQR)
	g.POST("/group/:id/:member_index", v.ValidateGroupMember)
	g.GET("/group/:id", v.GroupStatus)
}
