package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/KaushikAtTrks/events-ticket/internal/model"
	"github.com/KaushikAtTrks/events-ticket/internal/repository"
)

// BookingService is the booking lifecycle manager.  It owns creation
// (pass lookup, roster validation, discount authorization, pricing,
// atomic insert) and read paths; all post-creation state transitions
// belong to the EntryValidator.
type BookingService struct {
	Passes    PassCatalog
	Discounts DiscountRegistry
	Store     BookingStore
	Sales     SaleRecorder
	// Usage, when set, receives best-effort usage bumps for applied
	// discounts.  Implemented by repository.DiscountRepo.
	Usage interface {
		IncrementUsage(ctx context.Context, id uint64) error
	}
}

// NewBookingService constructs a BookingService.  Sales may be nil when
// staff sales are not wired (e.g. in tests of the online path).
func NewBookingService(passes PassCatalog, discounts DiscountRegistry, store BookingStore, sales SaleRecorder) *BookingService {
	if passes == nil || discounts == nil || store == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{Passes: passes, Discounts: discounts, Store: store, Sales: sales}
}

// MemberInput is one roster slot supplied at creation time.
type MemberInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CreateBookingInput carries everything needed to create a booking.  For
// online sales SoldBy is nil and a discount, if any, is claimed by code.
// For staff sales SoldBy is the staff id and the discount is authorized
// against the discount assigned to that staff member.
type CreateBookingInput struct {
	UserID      uint64
	PassID      uint64
	IsGroup     bool
	Members     []MemberInput
	DiscountPct float64
	// DiscountCode claims a registry discount on the online path.
	DiscountCode  string
	PaymentStatus model.PaymentStatus
	SoldBy        *uint64
	// PaymentMode is recorded on the staff sale record (cash/upi).
	PaymentMode model.PaymentMode
}

// priceAfterDiscount applies a percentage discount to a cent amount,
// rounding half away from zero and clamping at zero.
func priceAfterDiscount(priceCents uint32, pct float64) uint32 {
	if pct <= 0 {
		return priceCents
	}
	amount := math.Round(float64(priceCents) * (1 - pct/100))
	if amount < 0 {
		return 0
	}
	return uint32(amount)
}

// authorizeDiscount resolves and checks the discount for this sale.  It
// returns the matched discount so usage accounting can reference it.
// Staff sales are checked against the discount assigned to the selling
// staff member; online sales must present a valid code.  Every failure
// mode here maps to ErrForbidden: an inactive, expired, unassigned or
// exceeded discount is an authorization problem, not a lookup problem.
func (s *BookingService) authorizeDiscount(ctx context.Context, in CreateBookingInput) (*model.Discount, error) {
	now := time.Now().UTC()
	if in.SoldBy != nil {
		d, err := s.Discounts.ActiveForStaff(ctx, *in.SoldBy)
		if err != nil {
			if err == repository.ErrDiscountNotFound {
				return nil, fmt.Errorf("%w: no discount assigned", repository.ErrForbidden)
			}
			return nil, err
		}
		if !d.Usable(now) || d.Percentage < in.DiscountPct {
			return nil, fmt.Errorf("%w: unauthorized discount amount", repository.ErrForbidden)
		}
		return d, nil
	}
	if in.DiscountCode == "" {
		return nil, fmt.Errorf("%w: discount requires a code", repository.ErrForbidden)
	}
	d, err := s.Discounts.GetByCode(ctx, in.DiscountCode)
	if err != nil {
		if err == repository.ErrDiscountNotFound {
			return nil, fmt.Errorf("%w: unknown discount code", repository.ErrForbidden)
		}
		return nil, err
	}
	if !d.Usable(now) {
		return nil, fmt.Errorf("%w: discount inactive or expired", repository.ErrForbidden)
	}
	if d.AssignedTo != nil {
		// Staff-bound codes cannot be redeemed online.
		return nil, fmt.Errorf("%w: discount not redeemable online", repository.ErrForbidden)
	}
	if d.Percentage < in.DiscountPct {
		return nil, fmt.Errorf("%w: unauthorized discount amount", repository.ErrForbidden)
	}
	return d, nil
}

// Create builds and persists a new booking.
//
// The pass must exist and be active.  Group bookings must reference a
// pass with a configured group size and carry between one and group-size
// members; individual bookings must not carry a roster.  A requested
// discount is authorized before pricing.  The booking is inserted as a
// single atomic write with status=active and every member not entered.
// For staff sales a sale record is then written best-effort: if it fails
// after the booking succeeded, the booking stands and the error is only
// logged.
func (s *BookingService) Create(ctx context.Context, p Principal, in CreateBookingInput) (*model.Booking, error) {
	action := ActionCreateBooking
	if in.SoldBy != nil {
		action = ActionSellPass
	}
	if err := Authorize(p, action, 0); err != nil {
		return nil, err
	}

	pass, err := s.Passes.GetByID(ctx, in.PassID)
	if err != nil {
		return nil, err
	}
	if !pass.IsActive {
		return nil, repository.ErrPassNotFound
	}

	if in.IsGroup {
		if pass.GroupSize == 0 {
			return nil, fmt.Errorf("%w: pass has no group capacity", ErrInvalidArgument)
		}
		if len(in.Members) == 0 || len(in.Members) > int(pass.GroupSize) {
			return nil, fmt.Errorf("%w: roster must have 1..%d members", ErrInvalidArgument, pass.GroupSize)
		}
		for i, m := range in.Members {
			if m.Name == "" {
				return nil, fmt.Errorf("%w: member %d has no name", ErrInvalidArgument, i)
			}
		}
	} else if len(in.Members) > 0 {
		return nil, fmt.Errorf("%w: roster given for individual booking", ErrInvalidArgument)
	}

	var discount *model.Discount
	if in.DiscountPct > 0 {
		if in.DiscountPct > 100 {
			return nil, fmt.Errorf("%w: discount above 100%%", ErrInvalidArgument)
		}
		if discount, err = s.authorizeDiscount(ctx, in); err != nil {
			return nil, err
		}
	}

	payStatus := in.PaymentStatus
	if payStatus == "" {
		payStatus = model.PaymentPending
	}

	b := &model.Booking{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		PassID:        pass.ID,
		IsGroup:       in.IsGroup,
		PaymentStatus: payStatus,
		Status:        model.BookingActive,
		DiscountPct:   in.DiscountPct,
		AmountCents:   priceAfterDiscount(pass.PriceCents, in.DiscountPct),
		SoldBy:        in.SoldBy,
	}
	for i, m := range in.Members {
		b.Members = append(b.Members, model.GroupMember{
			BookingID:   b.ID,
			MemberIndex: i,
			Name:        m.Name,
			Phone:       m.Phone,
		})
	}

	if err := s.Store.Insert(ctx, b); err != nil {
		return nil, err
	}

	// Auxiliary sale record for staff sales.  Deliberately after the
	// booking insert and never rolled back: the admission contract does
	// not depend on accounting.
	if in.SoldBy != nil && s.Sales != nil {
		sale := &model.StaffSale{
			StaffID:     *in.SoldBy,
			BookingID:   b.ID,
			DiscountPct: in.DiscountPct,
			PaymentMode: in.PaymentMode,
			AmountCents: b.AmountCents,
		}
		if err := s.Sales.Record(ctx, sale); err != nil {
			log.Printf("staff sale record failed for booking %s: %v", b.ID, err)
		}
	}
	if discount != nil && s.Usage != nil {
		if err := s.Usage.IncrementUsage(ctx, discount.ID); err != nil {
			log.Printf("discount usage bump failed for %s: %v", discount.Code, err)
		}
	}

	return b, nil
}

// Get loads a booking for the given principal, enforcing view policy
// (owner, staff or admin).
func (s *BookingService) Get(ctx context.Context, p Principal, id string) (*model.Booking, error) {
	b, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(p, ActionViewBooking, b.UserID); err != nil {
		return nil, err
	}
	return b, nil
}
