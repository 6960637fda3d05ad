package model

import (
	"fmt"
	"time"
)

// BookingStatus enumerates the lifecycle states of a booking.  A booking
// starts out as active and moves exactly once to either used or
// cancelled; both of those states are terminal.
type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingUsed      BookingStatus = "used"
	BookingCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus validates a raw string read from storage or a request
// body and returns the corresponding BookingStatus.  Unknown values are
// rejected so that records are never constructed from unchecked input.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingActive, BookingUsed, BookingCancelled:
		return BookingStatus(s), nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// PaymentStatus enumerates how (and whether) a booking has been paid for.
// Cash indicates an on-site staff sale settled in cash.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentCash    PaymentStatus = "cash"
	PaymentFailed  PaymentStatus = "failed"
)

// ParsePaymentStatus validates a raw payment status string.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentPaid, PaymentCash, PaymentFailed:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// GroupMember is one named admission slot inside a group booking.  The
// roster is fixed at creation time and the member index is the admission
// key: members are never reordered or removed.  Entered flips from false
// to true exactly once, at the gate.
//
// Fields:
//  BookingID   – booking this member belongs to.
//  MemberIndex – zero-based position in the roster (stable).
//  Name        – member name shown to gate staff.
//  Phone       – member phone shown to gate staff.
//  Entered     – whether this member has been admitted.
type GroupMember struct {
	BookingID   string `json:"-"`            // booking_members.booking_id
	MemberIndex int    `json:"member_index"` // booking_members.member_index
	Name        string `json:"name"`         // booking_members.name
	Phone       string `json:"phone"`        // booking_members.phone
	Entered     bool   `json:"entered"`      // booking_members.entry_status
}

// Booking is a sold admission right against a pass, either for a single
// person or for a fixed group roster.  The booking id doubles as the QR
// payload presented at the gate, which is why it is a random UUID rather
// than a sequential key.  Status and member entry flags are only ever
// mutated through conditional updates keyed on their previously observed
// value; everything else is immutable after creation.
//
// Fields:
//  ID            – UUID primary key; also the QR code payload.
//  UserID        – owning user.
//  PassID        – referenced pass in the catalog.
//  IsGroup       – whether this booking carries a member roster.
//  Members       – ordered roster, empty for individual bookings.
//  PaymentStatus – pending/paid/cash/failed.
//  Status        – active/used/cancelled.
//  DiscountPct   – applied discount percentage (0 when none).
//  AmountCents   – final price after discount, in cents.
//  SoldBy        – staff user id for assisted sales, nil for online.
//  CreatedAt     – creation timestamp (UTC).
type Booking struct {
	ID            string        `json:"id"`             // bookings.id
	UserID        uint64        `json:"user_id"`        // bookings.user_id
	PassID        uint64        `json:"pass_id"`        // bookings.pass_id
	IsGroup       bool          `json:"is_group"`       // bookings.is_group
	Members       []GroupMember `json:"group_members,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"` // bookings.payment_status
	Status        BookingStatus `json:"status"`         // bookings.status
	DiscountPct   float64       `json:"discount_applied"`
	AmountCents   uint32        `json:"amount_paid_cents"`
	SoldBy        *uint64       `json:"sold_by,omitempty"` // nil means sold online
	CreatedAt     time.Time     `json:"created_at"`        // bookings.created_at
}

// SoldByLabel renders the sold_by field for API responses: the staff id
// for assisted sales, "online" otherwise.
func (b *Booking) SoldByLabel() string {
	if b.SoldBy == nil {
		return "online"
	}
	return fmt.Sprintf("%d", *b.SoldBy)
}
