package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaushikAtTrks/events-ticket/internal/model"
)

func TestAuthorize(t *testing.T) {
	user := Principal{ID: 42, Role: model.RoleUser}
	staff := Principal{ID: 7, Role: model.RoleStaff}
	admin := Principal{ID: 1, Role: model.RoleAdmin}
	anon := Principal{}

	cases := []struct {
		name    string
		p       Principal
		action  Action
		ownerID uint64
		allowed bool
	}{
		{"any authenticated user may book", user, ActionCreateBooking, 0, true},
		{"staff may book for customers", staff, ActionCreateBooking, 0, true},
		{"anonymous may not book", anon, ActionCreateBooking, 0, false},

		{"owner views own booking", user, ActionViewBooking, 42, true},
		{"user may not view others", user, ActionViewBooking, 99, false},
		{"staff views any booking", staff, ActionViewBooking, 99, true},
		{"admin views any booking", admin, ActionViewBooking, 99, true},

		{"owner cancels own booking", user, ActionCancelBooking, 42, true},
		{"admin cancels any booking", admin, ActionCancelBooking, 99, true},
		{"staff may not cancel others", staff, ActionCancelBooking, 99, false},
		{"user may not cancel others", user, ActionCancelBooking, 99, false},

		{"staff sells passes", staff, ActionSellPass, 0, true},
		{"admin does not sell", admin, ActionSellPass, 0, false},
		{"user does not sell", user, ActionSellPass, 0, false},

		{"staff validates entry", staff, ActionValidateEntry, 0, true},
		{"admin validates entry", admin, ActionValidateEntry, 0, true},
		{"user may not validate", user, ActionValidateEntry, 0, false},

		{"admin manages catalog", admin, ActionManageCatalog, 0, true},
		{"staff may not manage catalog", staff, ActionManageCatalog, 0, false},
		{"admin views reports", admin, ActionViewReports, 0, true},
		{"staff may not view reports", staff, ActionViewReports, 0, false},

		{"unknown action denied", admin, Action("nonsense"), 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.p, tc.action, tc.ownerID)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
