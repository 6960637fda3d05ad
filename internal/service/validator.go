package service

import (
	"context"
	"fmt"

	"github.com/KaushikAtTrks/events-ticket/internal/model"
	"github.com/KaushikAtTrks/events-ticket/internal/repository"
)

// EntryValidator decides gate admissibility and performs booking state
// transitions.  Every transition it makes is a conditional update keyed
// on the previously observed state; when two gates race on the same
// booking (or the same group member), exactly one wins and the rest see
// a normal negative decision, never a duplicated admission.
type EntryValidator struct {
	Store BookingStore
}

// NewEntryValidator constructs an EntryValidator over the given store.
func NewEntryValidator(store BookingStore) *EntryValidator {
	if store == nil {
		panic("nil store passed to NewEntryValidator")
	}
	return &EntryValidator{Store: store}
}

// MemberEntry is a roster slot in a validation response, stripped of
// storage detail.
type MemberEntry struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Entered bool   `json:"entered"`
}

// ValidationResult is the outcome of a scan.  A non-admitting result is
// a normal decision (pass already used, cancelled, member already in),
// not an error: the gate client shows Reason and does not retry.
type ValidationResult struct {
	Admitted   bool          `json:"valid"`
	IsGroup    bool          `json:"is_group"`
	Reason     string        `json:"message,omitempty"`
	AllEntered bool          `json:"all_entered,omitempty"`
	Remaining  int           `json:"available_entries,omitempty"`
	Member     *MemberEntry  `json:"member,omitempty"`
	Members    []MemberEntry `json:"group_members,omitempty"`
}

func memberEntries(members []model.GroupMember) []MemberEntry {
	out := make([]MemberEntry, 0, len(members))
	for _, m := range members {
		out = append(out, MemberEntry{Name: m.Name, Phone: m.Phone, Entered: m.Entered})
	}
	return out
}

func countRemaining(members []model.GroupMember) int {
	n := 0
	for _, m := range members {
		if !m.Entered {
			n++
		}
	}
	return n
}

// ValidateEntry handles a QR scan.  For individual bookings it attempts
// the active→used transition and admits if, and only if, this caller won
// it.  For group bookings it does not admit anyone; it returns the
// roster preview so the gate can pick a member and call
// ValidateGroupEntry.  A booking that is not active yields a non-admitting
// result carrying the current status.
func (v *EntryValidator) ValidateEntry(ctx context.Context, p Principal, bookingID string) (*ValidationResult, error) {
	if err := Authorize(p, ActionValidateEntry, 0); err != nil {
		return nil, err
	}
	b, err := v.Store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BookingActive {
		return &ValidationResult{
			Admitted: false,
			IsGroup:  b.IsGroup,
			Reason:   fmt.Sprintf("Pass is %s", b.Status),
		}, nil
	}
	if b.IsGroup {
		remaining := countRemaining(b.Members)
		if remaining == 0 {
			// Roster exhausted but the derived status flip has not landed
			// yet (or raced); report the same terminal message either way.
			return &ValidationResult{
				Admitted: false,
				IsGroup:  true,
				Reason:   "All members have already entered",
			}, nil
		}
		return &ValidationResult{
			Admitted:  true,
			IsGroup:   true,
			Remaining: remaining,
			Members:   memberEntries(b.Members),
		}, nil
	}
	won, err := v.Store.UpdateStatusIf(ctx, b.ID, model.BookingActive, model.BookingUsed)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the race: another gate admitted this pass between our read
		// and our write.  Re-read for an accurate reason; fall back to
		// "used" if the fresh read fails.
		reason := "Pass is used"
		if fresh, err := v.Store.GetByID(ctx, b.ID); err == nil && fresh.Status != model.BookingActive {
			reason = fmt.Sprintf("Pass is %s", fresh.Status)
		}
		return &ValidationResult{Admitted: false, Reason: reason}, nil
	}
	return &ValidationResult{Admitted: true, Reason: "Entry validated successfully"}, nil
}

// ValidateGroupEntry admits a single member of a group booking.
//
// The member flip is a conditional update on the roster slot: when two
// staff tap the same member at once, one flip succeeds and the other
// observes "already entered".  After a winning flip the validator
// re-counts the roster and, if no member remains, derives the booking's
// used status through the same active→used conditional update.  Two
// racing "last member" flips may both attempt that transition; the
// conditional update lets exactly one through, and losing it is not an
// error since the group ends up used either way.
func (v *EntryValidator) ValidateGroupEntry(ctx context.Context, p Principal, bookingID string, memberIndex int) (*ValidationResult, error) {
	if err := Authorize(p, ActionValidateEntry, 0); err != nil {
		return nil, err
	}
	b, err := v.Store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsGroup {
		return nil, repository.ErrBookingNotFound
	}
	if b.Status != model.BookingActive {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidState, b.Status)
	}
	if memberIndex < 0 || memberIndex >= len(b.Members) {
		return nil, fmt.Errorf("%w: member index out of range", ErrInvalidArgument)
	}
	member := b.Members[memberIndex]
	if member.Entered {
		return &ValidationResult{
			Admitted: false,
			IsGroup:  true,
			Reason:   "Member has already entered",
		}, nil
	}
	won, err := v.Store.MarkMemberEntered(ctx, b.ID, memberIndex)
	if err != nil {
		return nil, err
	}
	if !won {
		return &ValidationResult{
			Admitted: false,
			IsGroup:  true,
			Reason:   "Member has already entered",
		}, nil
	}
	remaining, err := v.Store.CountUnentered(ctx, b.ID)
	if err != nil {
		// The member flip committed; the admission stands even though we
		// cannot tell whether it was the last one.
		return &ValidationResult{
			Admitted: true,
			IsGroup:  true,
			Reason:   "Entry validated successfully",
			Member:   &MemberEntry{Name: member.Name, Phone: member.Phone, Entered: true},
		}, nil
	}
	allEntered := remaining == 0
	if allEntered {
		if _, err := v.Store.UpdateStatusIf(ctx, b.ID, model.BookingActive, model.BookingUsed); err != nil {
			return nil, err
		}
	}
	return &ValidationResult{
		Admitted:   true,
		IsGroup:    true,
		Reason:     "Entry validated successfully",
		AllEntered: allEntered,
		Remaining:  remaining,
		Member:     &MemberEntry{Name: member.Name, Phone: member.Phone, Entered: true},
	}, nil
}

// GroupStatus is the read-only view served by PeekGroupStatus.
type GroupStatus struct {
	BookingID string        `json:"booking_id"`
	Status    string        `json:"status"`
	Remaining int           `json:"available_entries"`
	Members   []MemberEntry `json:"group_members"`
}

// PeekGroupStatus reports per-member entry state and the count of
// unentered members without mutating anything.  It may be called any
// number of times, in any booking status.
func (v *EntryValidator) PeekGroupStatus(ctx context.Context, p Principal, bookingID string) (*GroupStatus, error) {
	if err := Authorize(p, ActionValidateEntry, 0); err != nil {
		return nil, err
	}
	b, err := v.Store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsGroup {
		return nil, repository.ErrBookingNotFound
	}
	return &GroupStatus{
		BookingID: b.ID,
		Status:    string(b.Status),
		Remaining: countRemaining(b.Members),
		Members:   memberEntries(b.Members),
	}, nil
}

// Cancel transitions an active booking to cancelled.  Only the owner or
// an admin may cancel; used and cancelled bookings are terminal.  The
// transition itself is the usual conditional update, so a validation
// racing the cancellation resolves to exactly one winner.
func (v *EntryValidator) Cancel(ctx context.Context, p Principal, bookingID string) (*model.Booking, error) {
	b, err := v.Store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionCancelBooking, b.UserID); err != nil {
		return nil, err
	}
	if b.Status != model.BookingActive {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidState, b.Status)
	}
	won, err := v.Store.UpdateStatusIf(ctx, b.ID, model.BookingActive, model.BookingCancelled)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("%w: booking is no longer active", ErrInvalidState)
	}
	b.Status = model.BookingCancelled
	return b, nil
}
