package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing the member index
	"strings"  // trimming helpers
	"time"     // event timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/KaushikAtTrks/events-ticket/internal/queue"   // gate events published to the broker
	"github.com/KaushikAtTrks/events-ticket/internal/service" // entry validator
)

// ValidationHandler serves the gate: QR scans, group member admission
// and the read-only group roster view.  Decisions come back with HTTP
// 200 whether or not entry is granted; a denial is a normal outcome the
// gate client renders, not an error.  Errors are reserved for unknown
// bookings, bad requests and storage faults.
type ValidationHandler struct {
	Validator *service.EntryValidator
}

// NewValidationHandler constructs a ValidationHandler.
func NewValidationHandler(validator *service.EntryValidator) *ValidationHandler {
	if validator == nil {
		panic("nil validator passed to NewValidationHandler")
	}
	return &ValidationHandler{Validator: validator}
}

// publishDecision emits the audit event for a gate decision.  Best-effort:
// the admission already happened and the broker may be down.
func publishDecision(c echo.Context, validatorID uint64, bookingID string, memberIndex *int, res *service.ValidationResult) {
	_ = queue.PublishEntryValidated(c.Request().Context(), queue.EntryValidatedEvent{
		BookingID:   bookingID,
		ValidatorID: validatorID,
		IsGroup:     res.IsGroup,
		MemberIndex: memberIndex,
		Admitted:    res.Admitted,
		Reason:      res.Reason,
		AllEntered:  res.AllEntered,
		ValidatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

type validateQRReq struct {
	QRCode string `json:"qr_code"`
}

// ValidateQR handles POST /v1/validate/qr.  The scanned QR payload is
// the booking id.  Individual bookings are admitted (or denied) in one
// step; group bookings return the roster so the gate can pick a member
// and call ValidateGroupMember.
func (h *ValidationHandler) ValidateQR(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req validateQRReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	qr := strings.TrimSpace(req.QRCode)
	if qr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_code is required"})
	}
	res, err := h.Validator.ValidateEntry(c.Request().Context(), p, qr)
	if err != nil {
		return writeServiceError(c, err)
	}
	if !res.IsGroup || !res.Admitted {
		// Group roster previews are not decisions; only terminal outcomes
		// are audited.
		publishDecision(c, p.ID, qr, nil, res)
	}
	return c.JSON(http.StatusOK, res)
}

// ValidateGroupMember handles POST /v1/validate/group/:id/:member_index
// and admits a single member of a group booking.  The member index comes
// from the roster returned by ValidateQR.
func (h *ValidationHandler) ValidateGroupMember(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID := strings.TrimSpace(c.Param("id"))
	if bookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	memberIndex, err := strconv.Atoi(c.Param("member_index"))
	if err != nil || memberIndex < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member index"})
	}
	res, err := h.Validator.ValidateGroupEntry(c.Request().Context(), p, bookingID, memberIndex)
	if err != nil {
		return writeServiceError(c, err)
	}
	publishDecision(c, p.ID, bookingID, &memberIndex, res)
	return c.JSON(http.StatusOK, res)
}

// GroupStatus handles GET /v1/validate/group/:id and returns the
// per-member entry state without admitting anyone.
func (h *ValidationHandler) GroupStatus(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID := strings.TrimSpace(c.Param("id"))
	if bookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	st, err := h.Validator.PeekGroupStatus(c.Request().Context(), p, bookingID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
