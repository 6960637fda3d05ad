package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaushikAtTrks/events-ticket/internal/model"
	"github.com/KaushikAtTrks/events-ticket/internal/repository"
)

var gate = Principal{ID: 7, Role: model.RoleStaff}

func individualBooking(id string, owner uint64) *model.Booking {
	return &model.Booking{
		ID:            id,
		UserID:        owner,
		PassID:        1,
		PaymentStatus: model.PaymentPaid,
		Status:        model.BookingActive,
		AmountCents:   5000,
	}
}

func groupBooking(id string, owner uint64, names ...string) *model.Booking {
	b := &model.Booking{
		ID:            id,
		UserID:        owner,
		PassID:        2,
		IsGroup:       true,
		PaymentStatus: model.PaymentPaid,
		Status:        model.BookingActive,
		AmountCents:   12000,
	}
	for i, n := range names {
		b.Members = append(b.Members, model.GroupMember{
			BookingID: id, MemberIndex: i, Name: n, Phone: fmt.Sprintf("555-000%d", i),
		})
	}
	return b
}

func TestValidateEntryIndividual(t *testing.T) {
	store := newFakeStore(individualBooking("b1", 42))
	v := NewEntryValidator(store)

	res, err := v.ValidateEntry(context.Background(), gate, "b1")
	require.NoError(t, err)
	assert.True(t, res.Admitted)
	assert.Equal(t, model.BookingUsed, store.status("b1"))

	// Second scan of the same pass is a normal denial, not an error.
	res, err = v.ValidateEntry(context.Background(), gate, "b1")
	require.NoError(t, err)
	assert.False(t, res.Admitted)
	assert.Equal(t, "Pass is used", res.Reason)
}

func TestValidateEntryCancelled(t *testing.T) {
	b := individualBooking("b1", 42)
	b.Status = model.BookingCancelled
	v := NewEntryValidator(newFakeStore(b))

	res, err := v.ValidateEntry(context.Background(), gate, "b1")
	require.NoError(t, err)
	assert.False(t, res.Admitted)
	assert.Equal(t, "Pass is cancelled", res.Reason)
}

func TestValidateEntryUnknownBooking(t *testing.T) {
	v := NewEntryValidator(newFakeStore())
	_, err := v.ValidateEntry(context.Background(), gate, "missing")
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestValidateEntryRequiresGateRole(t *testing.T) {
	v := NewEntryValidator(newFakeStore(individualBooking("b1", 42)))
	_, err := v.ValidateEntry(context.Background(), Principal{ID: 42, Role: model.RoleUser}, "b1")
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestValidateEntryConcurrentScansAdmitOnce(t *testing.T) {
	store := newFakeStore(individualBooking("b1", 42))
	v := NewEntryValidator(store)

	const scanners = 16
	admitted := make(chan bool, scanners)
	var wg sync.WaitGroup
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := v.ValidateEntry(context.Background(), gate, "b1")
			if err == nil {
				admitted <- res.Admitted
			}
		}()
	}
	wg.Wait()
	close(admitted)

	wins := 0
	for ok := range admitted {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, model.BookingUsed, store.status("b1"))
}

func TestValidateEntryGroupReturnsRoster(t *testing.T) {
	store := newFakeStore(groupBooking("g1", 42, "ana", "ben", "cal"))
	v := NewEntryValidator(store)

	res, err := v.ValidateEntry(context.Background(), gate, "g1")
	require.NoError(t, err)
	assert.True(t, res.Admitted)
	assert.True(t, res.IsGroup)
	assert.Equal(t, 3, res.Remaining)
	require.Len(t, res.Members, 3)
	assert.Equal(t, "ana", res.Members[0].Name)
	// The roster preview admits nobody.
	assert.Equal(t, model.BookingActive, store.status("g1"))
	n, _ := store.CountUnentered(context.Background(), "g1")
	assert.Equal(t, 3, n)
}

func TestValidateGroupEntryLifecycle(t *testing.T) {
	store := newFakeStore(groupBooking("g1", 42, "ana", "ben"))
	v := NewEntryValidator(store)
	ctx := context.Background()

	res, err := v.ValidateGroupEntry(ctx, gate, "g1", 0)
	require.NoError(t, err)
	assert.True(t, res.Admitted)
	assert.False(t, res.AllEntered)
	assert.Equal(t, 1, res.Remaining)
	require.NotNil(t, res.Member)
	assert.Equal(t, "ana", res.Member.Name)
	assert.Equal(t, model.BookingActive, store.status("g1"))

	// Same member again is a denial.
	res, err = v.ValidateGroupEntry(ctx, gate, "g1", 0)
	require.NoError(t, err)
	assert.False(t, res.Admitted)
	assert.Equal(t, "Member has already entered", res.Reason)

	// Last member flips the booking to used.
	res, err = v.ValidateGroupEntry(ctx, gate, "g1", 1)
	require.NoError(t, err)
	assert.True(t, res.Admitted)
	assert.True(t, res.AllEntered)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, model.BookingUsed, store.status("g1"))

	// Once used, further member admissions are state errors.
	_, err = v.ValidateGroupEntry(ctx, gate, "g1", 1)
	assert.ErrorIs(t, err, ErrInvalidState)

	// And a fresh QR scan reports the terminal status.
	scan, err := v.ValidateEntry(ctx, gate, "g1")
	require.NoError(t, err)
	assert.False(t, scan.Admitted)
	assert.Equal(t, "Pass is used", scan.Reason)
}

func TestValidateGroupEntryBounds(t *testing.T) {
	store := newFakeStore(groupBooking("g1", 42, "ana"), individualBooking("b1", 42))
	v := NewEntryValidator(store)
	ctx := context.Background()

	_, err := v.ValidateGroupEntry(ctx, gate, "g1", 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = v.ValidateGroupEntry(ctx, gate, "g1", -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// Individual bookings have no roster to address.
	_, err = v.ValidateGroupEntry(ctx, gate, "b1", 0)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestValidateGroupEntrySameMemberConcurrent(t *testing.T) {
	store := newFakeStore(groupBooking("g1", 42, "ana", "ben", "cal"))
	v := NewEntryValidator(store)

	const scanners = 12
	wins := make(chan bool, scanners)
	var wg sync.WaitGroup
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := v.ValidateGroupEntry(context.Background(), gate, "g1", 1)
			if err == nil {
				wins <- res.Admitted
			}
		}()
	}
	wg.Wait()
	close(wins)

	admitted := 0
	for ok := range wins {
		if ok {
			admitted++
		}
	}
	assert.Equal(t, 1, admitted)
	n, _ := store.CountUnentered(context.Background(), "g1")
	assert.Equal(t, 2, n)
	assert.Equal(t, model.BookingActive, store.status("g1"))
}

func TestValidateGroupEntryDistinctMembersConcurrent(t *testing.T) {
	names := []string{"m0", "m1", "m2", "m3", "m4"}
	store := newFakeStore(groupBooking("g1", 42, names...))
	v := NewEntryValidator(store)

	var wg sync.WaitGroup
	results := make([]*ValidationResult, len(names))
	for i := range names {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			res, err := v.ValidateGroupEntry(context.Background(), gate, "g1", idx)
			if err == nil {
				results[idx] = res
			}
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		require.NotNil(t, res, "member %d", i)
		assert.True(t, res.Admitted, "member %d", i)
	}
	n, _ := store.CountUnentered(context.Background(), "g1")
	assert.Equal(t, 0, n)
	// Whichever goroutine admitted the last member derived the flip.
	assert.Equal(t, model.BookingUsed, store.status("g1"))
}

func TestPeekGroupStatus(t *testing.T) {
	store := newFakeStore(groupBooking("g1", 42, "ana", "ben"), individualBooking("b1", 42))
	v := NewEntryValidator(store)
	ctx := context.Background()

	_, err := v.ValidateGroupEntry(ctx, gate, "g1", 1)
	require.NoError(t, err)

	st, err := v.PeekGroupStatus(ctx, gate, "g1")
	require.NoError(t, err)
	assert.Equal(t, "active", st.Status)
	assert.Equal(t, 1, st.Remaining)
	require.Len(t, st.Members, 2)
	assert.False(t, st.Members[0].Entered)
	assert.True(t, st.Members[1].Entered)

	// Reads never mutate; peeking twice is fine.
	again, err := v.PeekGroupStatus(ctx, gate, "g1")
	require.NoError(t, err)
	assert.Equal(t, st.Remaining, again.Remaining)

	_, err = v.PeekGroupStatus(ctx, gate, "b1")
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestCancel(t *testing.T) {
	owner := Principal{ID: 42, Role: model.RoleUser}
	admin := Principal{ID: 1, Role: model.RoleAdmin}
	staff := Principal{ID: 7, Role: model.RoleStaff}

	t.Run("owner cancels active booking", func(t *testing.T) {
		store := newFakeStore(individualBooking("b1", 42))
		v := NewEntryValidator(store)
		b, err := v.Cancel(context.Background(), owner, "b1")
		require.NoError(t, err)
		assert.Equal(t, model.BookingCancelled, b.Status)
		assert.Equal(t, model.BookingCancelled, store.status("b1"))
	})

	t.Run("admin cancels any booking", func(t *testing.T) {
		store := newFakeStore(individualBooking("b1", 42))
		v := NewEntryValidator(store)
		_, err := v.Cancel(context.Background(), admin, "b1")
		assert.NoError(t, err)
	})

	t.Run("staff may not cancel others' bookings", func(t *testing.T) {
		store := newFakeStore(individualBooking("b1", 42))
		v := NewEntryValidator(store)
		_, err := v.Cancel(context.Background(), staff, "b1")
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("other users may not cancel", func(t *testing.T) {
		store := newFakeStore(individualBooking("b1", 42))
		v := NewEntryValidator(store)
		_, err := v.Cancel(context.Background(), Principal{ID: 99, Role: model.RoleUser}, "b1")
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("used bookings are terminal", func(t *testing.T) {
		b := individualBooking("b1", 42)
		b.Status = model.BookingUsed
		v := NewEntryValidator(newFakeStore(b))
		_, err := v.Cancel(context.Background(), owner, "b1")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("cancel loses race against validation", func(t *testing.T) {
		store := newFakeStore(individualBooking("b1", 42))
		v := NewEntryValidator(store)
		// Another gate admits the pass between our read and our write.
		won, err := store.UpdateStatusIf(context.Background(), "b1", model.BookingActive, model.BookingUsed)
		require.NoError(t, err)
		require.True(t, won)
		_, err = v.Cancel(context.Background(), owner, "b1")
		assert.True(t, errors.Is(err, ErrInvalidState))
	})
}
