package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"strings"  // trimming helpers

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/KaushikAtTrks/events-ticket/internal/model"      // booking and payment models
	"github.com/KaushikAtTrks/events-ticket/internal/repository" // booking repository for list queries
	"github.com/KaushikAtTrks/events-ticket/internal/service"    // booking service and validator
)

// BookingHandler serves the customer-facing booking endpoints: create,
// fetch, cancel and list.  All state transitions go through the service
// layer; this handler only translates HTTP to service calls.
type BookingHandler struct {
	Svc       *service.BookingService
	Validator *service.EntryValidator
	Bookings  *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler with its dependencies.
func NewBookingHandler(svc *service.BookingService, validator *service.EntryValidator, bookings *repository.BookingRepo) *BookingHandler {
	if svc == nil || validator == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc, Validator: validator, Bookings: bookings}
}

// bookingJSON renders a booking for API responses.  The booking id
// doubles as the QR payload, surfaced explicitly as qr_code so clients
// never have to know that convention.
func bookingJSON(b *model.Booking) echo.Map {
	m := echo.Map{
		"id":                b.ID,
		"qr_code":           b.ID,
		"user_id":           b.UserID,
		"pass_id":           b.PassID,
		"is_group":          b.IsGroup,
		"payment_status":    b.PaymentStatus,
		"status":            b.Status,
		"discount_applied":  b.DiscountPct,
		"amount_paid_cents": b.AmountCents,
		"sold_by":           b.SoldByLabel(),
		"created_at":        b.CreatedAt,
	}
	if b.IsGroup {
		m["group_members"] = b.Members
	}
	return m
}

type createBookingReq struct {
	PassID        uint64                `json:"pass_id"`
	IsGroup       bool                  `json:"is_group"`
	Members       []service.MemberInput `json:"group_members"`
	DiscountPct   float64               `json:"discount_pct"`
	DiscountCode  string                `json:"discount_code"`
	PaymentStatus string                `json:"payment_status"`
}

// CreateBooking handles POST /v1/bookings.  The booking is created for
// the authenticated user; discounts on this path must be claimed with an
// open (unassigned) code.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.PassID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pass_id is required"})
	}
	payStatus := model.PaymentPending
	if s := strings.TrimSpace(req.PaymentStatus); s != "" {
		parsed, err := model.ParsePaymentStatus(strings.ToLower(s))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment_status"})
		}
		payStatus = parsed
	}

	b, err := h.Svc.Create(c.Request().Context(), p, service.CreateBookingInput{
		UserID:        p.ID,
		PassID:        req.PassID,
		IsGroup:       req.IsGroup,
		Members:       req.Members,
		DiscountPct:   req.DiscountPct,
		DiscountCode:  strings.ToUpper(strings.TrimSpace(req.DiscountCode)),
		PaymentStatus: payStatus,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, bookingJSON(b))
}

// GetBooking handles GET /v1/bookings/:id.  Owners see their own
// bookings; staff and admins see any.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.Get(c.Request().Context(), p, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, bookingJSON(b))
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  Only the owner or
// an admin may cancel, and only while the booking is still active.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Validator.Cancel(c.Request().Context(), p, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, bookingJSON(b))
}

// MyBookings handles GET /v1/bookings and lists the caller's bookings,
// newest first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), p.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]echo.Map, 0, len(items))
	for i := range items {
		out = append(out, bookingJSON(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// UserBookings handles GET /v1/users/:id/bookings for staff and admins
// assisting a customer at the counter.
func (h *BookingHandler) UserBookings(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if err := service.Authorize(p, service.ActionViewBooking, userID); err != nil {
		return writeServiceError(c, err)
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]echo.Map, 0, len(items))
	for i := range items {
		out = append(out, bookingJSON(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
