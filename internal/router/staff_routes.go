package router

import (
	"github.com/labstack/echo/v4"

	"github.com/KaushikAtTrks/events-ticket/internal/handler"
	"github.com/KaushikAtTrks/events-ticket/internal/middleware"
	"github.com/KaushikAtTrks/events-ticket/internal/model"
)

// RegisterStaff registers the counter-sales routes, restricted to the
// staff role.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, jwtSecret string) {
	g := e.Group("/v1/staff")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStaff))
	g.POST("/sell", s.SellPass)
	g.GET("/sales", s.MySales)
	g.GET("/discounts", s.MyDiscounts)
}
