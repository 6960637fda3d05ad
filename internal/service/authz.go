// Package service holds the core business logic: booking creation
// (pricing, discount authorization) and entry validation (the gate state
// machine).  It depends on the repository layer through small interfaces
// so the state machine can be exercised against in-memory stores in tests.
package service

import (
	"github.com/KaushikAtTrks/events-ticket/internal/model"
	"github.com/KaushikAtTrks/events-ticket/internal/repository"
)

// Principal is the authenticated identity attached to every core
// operation.  It is supplied by the JWT middleware; the core trusts it
// and only enforces role and ownership checks.
type Principal struct {
	ID   uint64
	Role string
}

// Action names the operations the authorization policy knows about.
type Action string

const (
	ActionCreateBooking Action = "booking.create"
	ActionViewBooking   Action = "booking.view"
	ActionCancelBooking Action = "booking.cancel"
	ActionSellPass      Action = "booking.sell"
	ActionValidateEntry Action = "entry.validate"
	ActionManageCatalog Action = "catalog.manage"
	ActionViewReports   Action = "reports.view"
)

// Authorize is the single policy function consulted by every core
// operation.  ownerID is the owning user of the resource being acted on;
// pass zero for actions without an owner.  It returns
// repository.ErrForbidden on denial and nil otherwise.
func Authorize(p Principal, action Action, ownerID uint64) error {
	switch action {
	case ActionCreateBooking:
		if p.ID != 0 {
			return nil
		}
	case ActionViewBooking:
		if p.Role == model.RoleStaff || p.Role == model.RoleAdmin || p.ID == ownerID {
			return nil
		}
	case ActionCancelBooking:
		// Owner or admin; staff may not cancel other people's bookings.
		if p.Role == model.RoleAdmin || p.ID == ownerID {
			return nil
		}
	case ActionSellPass:
		if p.Role == model.RoleStaff {
			return nil
		}
	case ActionValidateEntry:
		if p.Role == model.RoleStaff || p.Role == model.RoleAdmin {
			return nil
		}
	case ActionManageCatalog, ActionViewReports:
		if p.Role == model.RoleAdmin {
			return nil
		}
	}
	return repository.ErrForbidden
}
