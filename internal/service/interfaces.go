package service

import (
	"context"
	"errors"

	"github.com/KaushikAtTrks/events-ticket/internal/model"
)

// ErrInvalidArgument flags malformed input: a bad roster, an
// out-of-range member index, a non-group booking on a group path.
// Handlers should translate it into an HTTP 400 response.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidState flags an operation that is illegal for the booking's
// current status, such as cancelling an already-used booking.  Handlers
// should translate it into an HTTP 409 response.
var ErrInvalidState = errors.New("invalid state")

// PassCatalog is the read-only view of the pass catalog the booking
// path consumes.  Implemented by repository.PassRepo.
type PassCatalog interface {
	GetByID(ctx context.Context, id uint64) (*model.Pass, error)
}

// DiscountRegistry is the read-only view of the discount registry.
// Implemented by repository.DiscountRepo.
type DiscountRegistry interface {
	GetByCode(ctx context.Context, code string) (*model.Discount, error)
	ActiveForStaff(ctx context.Context, staffID uint64) (*model.Discount, error)
}

// BookingStore is the transactional keyed storage for bookings.  The
// two conditional mutators are compare-and-swap primitives: they succeed
// for exactly one caller when racers present the same expected prior
// state.  Implemented by repository.BookingRepo.
type BookingStore interface {
	Insert(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	UpdateStatusIf(ctx context.Context, id string, from, to model.BookingStatus) (bool, error)
	MarkMemberEntered(ctx context.Context, bookingID string, memberIndex int) (bool, error)
	CountUnentered(ctx context.Context, bookingID string) (int, error)
}

// SaleRecorder appends staff sale records.  Implemented by
// repository.StaffSaleRepo.  Failures after a successful booking insert
// are logged and swallowed, never rolled back into the booking.
type SaleRecorder interface {
	Record(ctx context.Context, s *model.StaffSale) error
}
