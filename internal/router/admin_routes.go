package router

import (
	"github.com/labstack/echo/v4"

	"github.com/KaushikAtTrks/events-ticket/internal/handler"
	"github.com/KaushikAtTrks/events-ticket/internal/middleware"
	"github.com/KaushikAtTrks/events-ticket/internal/model"
)

// RegisterAdmin registers catalog management, the discount registry and
// reporting, all restricted to the admin role.
func RegisterAdmin(e *echo.Echo, p *handler.PassHandler, d *handler.DiscountHandler, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.POST("/passes", p.CreatePass)
	g.PATCH("/passes/:id", p.UpdatePass)

	g.POST("/discounts", d.CreateDiscount)
	g.GET("/discounts", d.ListDiscounts)
	g.DELETE("/discounts/:id", d.DeactivateDiscount)

	g.GET("/reports/sales", a.SalesReport)
	g.GET("/users", a.ListUsers)
}
