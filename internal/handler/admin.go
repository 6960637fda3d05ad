package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing query parameters
	"time"     // report window parsing

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/KaushikAtTrks/events-ticket/internal/repository" // sale and user repositories
)

// AdminHandler serves reporting and directory endpoints that only
// admins reach; role enforcement happens at the route group.
type AdminHandler struct {
	Sales *repository.StaffSaleRepo
	Users *repository.UserRepo
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(sales *repository.StaffSaleRepo, users *repository.UserRepo) *AdminHandler {
	if sales == nil || users == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Sales: sales, Users: users}
}

// SalesReport handles GET /v1/admin/reports/sales.  Optional from/to
// query parameters (RFC3339) bound the window; either may be omitted.
// The response carries the raw records plus aggregate totals.
func (h *AdminHandler) SalesReport(c echo.Context) error {
	var from, to time.Time
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be RFC3339"})
		}
		from = t.UTC()
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be RFC3339"})
		}
		to = t.UTC()
	}

	items, err := h.Sales.ListBetween(c.Request().Context(), from, to)
	if err != nil {
		return writeServiceError(c, err)
	}
	var totalCents uint64
	byStaff := make(map[uint64]uint64)
	for _, s := range items {
		totalCents += uint64(s.AmountCents)
		byStaff[s.StaffID] += uint64(s.AmountCents)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":          items,
		"count":          len(items),
		"total_cents":    totalCents,
		"cents_by_staff": byStaff,
	})
}

type userListEntry struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsers handles GET /v1/admin/users with offset/limit paging.
// Password hashes never leave this handler.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	offset := 0
	limit := 50
	if s := c.QueryParam("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			offset = n
		}
	}
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	users, err := h.Users.List(c.Request().Context(), offset, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]userListEntry, 0, len(users))
	for _, u := range users {
		out = append(out, userListEntry{
			ID:        u.ID,
			Email:     u.Email,
			Role:      u.Role,
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "offset": offset, "limit": limit})
}
