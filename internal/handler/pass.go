package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"strings"  // trimming utilities
	"time"     // parsing validity timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/KaushikAtTrks/events-ticket/internal/model"      // pass model and type parsing
	"github.com/KaushikAtTrks/events-ticket/internal/repository" // pass repository
)

// PassHandler serves the pass catalog: public browse endpoints plus the
// admin-only create/update operations.  The public routes are fronted by
// the Redis response cache, which is why list responses must be stable
// for identical queries.
type PassHandler struct {
	Passes *repository.PassRepo
}

// NewPassHandler constructs a PassHandler.
func NewPassHandler(passes *repository.PassRepo) *PassHandler {
	if passes == nil {
		panic("nil repository passed to NewPassHandler")
	}
	return &PassHandler{Passes: passes}
}

// ListPasses handles GET /v1/passes and returns every pass currently on
// sale, cheapest first.  No authentication is required so visitors can
// browse before registering.
func (h *PassHandler) ListPasses(c echo.Context) error {
	items, err := h.Passes.ListActive(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetPass handles GET /v1/passes/:id.  Inactive passes are still
// returned so existing bookings can show what was purchased.
func (h *PassHandler) GetPass(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pass id"})
	}
	p, err := h.Passes.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type createPassReq struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	PriceCents  uint32  `json:"price_cents"`
	ValidFrom   string  `json:"valid_from"`  // RFC3339
	ValidUntil  string  `json:"valid_until"` // RFC3339
	MaxEntries  uint32  `json:"max_entries"`
	GroupSize   uint32  `json:"group_size"`
	Description *string `json:"description"`
}

// CreatePass handles POST /v1/admin/passes.  Group passes must declare a
// roster capacity; all other types must not.
func (h *PassHandler) CreatePass(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPassReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	passType, err := model.ParsePassType(strings.ToLower(strings.TrimSpace(req.Type)))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pass type"})
	}
	if passType == model.PassGroup && req.GroupSize == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "group pass requires group_size"})
	}
	if passType != model.PassGroup && req.GroupSize > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "group_size only allowed on group passes"})
	}
	validFrom, err := time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid_from must be RFC3339"})
	}
	validUntil, err := time.Parse(time.RFC3339, req.ValidUntil)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid_until must be RFC3339"})
	}
	if !validUntil.After(validFrom) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid_until must be after valid_from"})
	}
	maxEntries := req.MaxEntries
	if maxEntries == 0 {
		maxEntries = 1
	}

	p := &model.Pass{
		Name:        name,
		Type:        passType,
		PriceCents:  req.PriceCents,
		ValidFrom:   validFrom.UTC(),
		ValidUntil:  validUntil.UTC(),
		MaxEntries:  maxEntries,
		GroupSize:   req.GroupSize,
		Description: req.Description,
		CreatedBy:   adminID,
		IsActive:    true,
	}
	if err := h.Passes.Create(c.Request().Context(), p); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

type updatePassReq struct {
	Name       *string `json:"name"`
	PriceCents *uint32 `json:"price_cents"`
	ValidUntil *string `json:"valid_until"` // RFC3339
	MaxEntries *uint32 `json:"max_entries"`
	IsActive   *bool   `json:"is_active"`
}

// UpdatePass handles PATCH /v1/admin/passes/:id.  Only the mutable
// fields may change; pass type and group capacity are fixed at creation
// because existing bookings depend on them.
func (h *PassHandler) UpdatePass(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pass id"})
	}
	var req updatePassReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	upd := repository.PassUpdate{
		PriceCents: req.PriceCents,
		MaxEntries: req.MaxEntries,
		IsActive:   req.IsActive,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
		}
		upd.Name = &name
	}
	if req.ValidUntil != nil {
		t, err := time.Parse(time.RFC3339, *req.ValidUntil)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid_until must be RFC3339"})
		}
		s := t.UTC().Format("2006-01-02 15:04:05")
		upd.ValidUntil = &s
	}
	if err := h.Passes.Update(c.Request().Context(), id, upd); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
		}
		return writeServiceError(c, err)
	}
	p, err := h.Passes.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
