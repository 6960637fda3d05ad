package service

import (
	"context"
	"sync"

	"github.com/KaushikAtTrks/events-ticket/internal/model"
	"github.com/KaushikAtTrks/events-ticket/internal/repository"
)

// fakeStore is an in-memory BookingStore with the same conditional-write
// semantics as the MySQL implementation: both mutators check the expected
// prior state under a lock, so concurrent callers resolve to exactly one
// winner.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
}

func newFakeStore(bs ...*model.Booking) *fakeStore {
	s := &fakeStore{bookings: make(map[string]*model.Booking)}
	for _, b := range bs {
		s.bookings[b.ID] = cloneBooking(b)
	}
	return s
}

func cloneBooking(b *model.Booking) *model.Booking {
	cp := *b
	cp.Members = append([]model.GroupMember(nil), b.Members...)
	return &cp
}

func (s *fakeStore) Insert(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; ok {
		return repository.ErrConflict
	}
	s.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (s *fakeStore) UpdateStatusIf(_ context.Context, id string, from, to model.BookingStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (s *fakeStore) MarkMemberEntered(_ context.Context, bookingID string, memberIndex int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || memberIndex < 0 || memberIndex >= len(b.Members) {
		return false, nil
	}
	if b.Members[memberIndex].Entered {
		return false, nil
	}
	b.Members[memberIndex].Entered = true
	return true, nil
}

func (s *fakeStore) CountUnentered(_ context.Context, bookingID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return 0, repository.ErrBookingNotFound
	}
	n := 0
	for _, m := range b.Members {
		if !m.Entered {
			n++
		}
	}
	return n, nil
}

// status reads the current status directly, bypassing the store API.
func (s *fakeStore) status(id string) model.BookingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id].Status
}
