package router

import (
	"github.com/labstack/echo/v4"

	"github.com/KaushikAtTrks/events-ticket/internal/handler"
	"github.com/KaushikAtTrks/events-ticket/internal/middleware"
	"github.com/KaushikAtTrks/events-ticket/internal/model"
)

// RegisterBookings registers the booking lifecycle routes.  Every route
// requires authentication; ownership checks happen in the service layer,
// so all roles are allowed through at the route level.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/bookings")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleUser, model.RoleStaff, model.RoleAdmin))
	g.POST("", b.CreateBooking)
	g.GET("", b.MyBookings)
	g.GET("/:id", b.GetBooking)
	g.POST("/:id/cancel", b.CancelBooking)

	// Counter lookup of another user's bookings, staff and admin only.
	u := e.Group("/v1/users")
	u.Use(middleware.JWTAuth(jwtSecret))
	u.Use(middleware.RequireRole(model.RoleStaff, model.RoleAdmin))
	u.GET("/:id/bookings", b.UserBookings)
}
