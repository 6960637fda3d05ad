package handler

import (
	"database/sql" // sentinel errors for user lookup
	"net/http"     // HTTP status codes
	"strings"      // trimming helpers
	"time"         // event timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/KaushikAtTrks/events-ticket/internal/model"      // payment mode parsing
	"github.com/KaushikAtTrks/events-ticket/internal/queue"      // sale events published to the broker
	"github.com/KaushikAtTrks/events-ticket/internal/repository" // sale and discount repositories
	"github.com/KaushikAtTrks/events-ticket/internal/service"    // booking service
)

// StaffHandler serves the counter-sales surface: selling a pass on
// behalf of a customer, and listing the staff member's own sales and
// assigned discounts.
type StaffHandler struct {
	Svc       *service.BookingService
	Sales     *repository.StaffSaleRepo
	Discounts *repository.DiscountRepo
	Users     *repository.UserRepo
}

// NewStaffHandler constructs a StaffHandler with its dependencies.
func NewStaffHandler(svc *service.BookingService, sales *repository.StaffSaleRepo, discounts *repository.DiscountRepo, users *repository.UserRepo) *StaffHandler {
	if svc == nil || sales == nil || discounts == nil || users == nil {
		panic("nil dependency passed to NewStaffHandler")
	}
	return &StaffHandler{Svc: svc, Sales: sales, Discounts: discounts, Users: users}
}

type sellPassReq struct {
	UserID      uint64                `json:"user_id"`
	UserEmail   string                `json:"user_email"`
	PassID      uint64                `json:"pass_id"`
	IsGroup     bool                  `json:"is_group"`
	Members     []service.MemberInput `json:"group_members"`
	DiscountPct float64               `json:"discount_pct"`
	PaymentMode string                `json:"payment_mode"` // cash | upi, default cash
}

// SellPass handles POST /v1/staff/sell.  The customer is identified by
// id or email and must already have an account.  A requested discount is
// authorized against the discount assigned to the selling staff member.
// The sale is settled on the spot, so payment status is cash for cash
// sales and paid for upi.
func (h *StaffHandler) SellPass(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sellPassReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.PassID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pass_id is required"})
	}

	ctx := c.Request().Context()
	customerID := req.UserID
	if customerID == 0 {
		email := strings.ToLower(strings.TrimSpace(req.UserEmail))
		if email == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id or user_email required"})
		}
		u, err := h.Users.GetByEmail(ctx, email)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		customerID = u.ID
	}

	mode := model.PayModeCash
	if s := strings.TrimSpace(req.PaymentMode); s != "" {
		parsed, err := model.ParsePaymentMode(strings.ToLower(s))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment_mode"})
		}
		mode = parsed
	}
	payStatus := model.PaymentCash
	if mode == model.PayModeUPI {
		payStatus = model.PaymentPaid
	}

	staffID := p.ID
	b, err := h.Svc.Create(ctx, p, service.CreateBookingInput{
		UserID:        customerID,
		PassID:        req.PassID,
		IsGroup:       req.IsGroup,
		Members:       req.Members,
		DiscountPct:   req.DiscountPct,
		PaymentStatus: payStatus,
		SoldBy:        &staffID,
		PaymentMode:   mode,
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	// Fan out to accounting.  Publishing is best-effort: the booking is
	// already durable and the broker may be down.
	_ = queue.PublishSaleRecorded(ctx, queue.SaleRecordedEvent{
		StaffID:     staffID,
		BookingID:   b.ID,
		PassID:      b.PassID,
		DiscountPct: b.DiscountPct,
		PaymentMode: string(mode),
		AmountCents: b.AmountCents,
		SoldAt:      time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, bookingJSON(b))
}

// MySales handles GET /v1/staff/sales and lists the caller's sale
// records, newest first.
func (h *StaffHandler) MySales(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Sales.ListByStaff(c.Request().Context(), p.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// MyDiscounts handles GET /v1/staff/discounts and lists the discounts
// assigned to the caller, usable or not, so staff can see what they may
// offer and when it expires.
func (h *StaffHandler) MyDiscounts(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Discounts.ListForStaff(c.Request().Context(), p.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
