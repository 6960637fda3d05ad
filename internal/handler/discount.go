package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"strings"  // trimming and case helpers
	"time"     // expiry parsing

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/KaushikAtTrks/events-ticket/internal/model"      // discount model
	"github.com/KaushikAtTrks/events-ticket/internal/repository" // discount repository
)

// DiscountHandler serves the admin-only discount registry.  Discounts
// are either open codes redeemable online or codes assigned to a staff
// member for assisted sales; authorization at booking time lives in the
// booking service, not here.
type DiscountHandler struct {
	Discounts *repository.DiscountRepo
}

// NewDiscountHandler constructs a DiscountHandler.
func NewDiscountHandler(discounts *repository.DiscountRepo) *DiscountHandler {
	if discounts == nil {
		panic("nil repository passed to NewDiscountHandler")
	}
	return &DiscountHandler{Discounts: discounts}
}

type createDiscountReq struct {
	Code          string  `json:"code"`
	Percentage    float64 `json:"percentage"`
	MaxLimitCents *uint32 `json:"max_limit_cents"`
	AssignedTo    *uint64 `json:"assigned_to"`
	Expiry        string  `json:"expiry"` // RFC3339
}

// CreateDiscount handles POST /v1/admin/discounts.
func (h *DiscountHandler) CreateDiscount(c echo.Context) error {
	var req createDiscountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	if req.Percentage <= 0 || req.Percentage > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "percentage must be in (0,100]"})
	}
	expiry, err := time.Parse(time.RFC3339, req.Expiry)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expiry must be RFC3339"})
	}
	if !expiry.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expiry must be in the future"})
	}

	d := &model.Discount{
		Code:          code,
		Percentage:    req.Percentage,
		MaxLimitCents: req.MaxLimitCents,
		AssignedTo:    req.AssignedTo,
		Expiry:        expiry.UTC(),
		IsActive:      true,
	}
	if err := h.Discounts.Create(c.Request().Context(), d); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "discount code already exists"})
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// ListDiscounts handles GET /v1/admin/discounts and returns the full
// registry, including expired and deactivated entries.
func (h *DiscountHandler) ListDiscounts(c echo.Context) error {
	items, err := h.Discounts.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DeactivateDiscount handles DELETE /v1/admin/discounts/:id.  Discounts
// are never hard-deleted; bookings reference the applied percentage and
// audit needs the code to survive.
func (h *DiscountHandler) DeactivateDiscount(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid discount id"})
	}
	if err := h.Discounts.Deactivate(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
