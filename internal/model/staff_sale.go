package model

import (
	"fmt"
	"time"
)

// PaymentMode enumerates how a staff-assisted sale was settled.
type PaymentMode string

const (
	PayModeCash PaymentMode = "cash"
	PayModeUPI  PaymentMode = "upi"
)

// ParsePaymentMode validates a raw payment mode string.
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(s) {
	case PayModeCash, PayModeUPI:
		return PaymentMode(s), nil
	}
	return "", fmt.Errorf("unknown payment mode %q", s)
}

// StaffSale is an auxiliary accounting record written when staff sell a
// pass on site.  It is best-effort: the booking itself is the source of
// truth for admission, and a failed sale record never rolls the booking
// back.
//
// Fields:
//  ID          – primary key identifier.
//  StaffID     – staff member who made the sale.
//  BookingID   – booking created by the sale.
//  DiscountPct – discount percentage applied (0 when none).
//  PaymentMode – cash or upi.
//  AmountCents – amount collected, in cents.
//  SaleTime    – when the sale was recorded (UTC).
type StaffSale struct {
	ID          uint64      `json:"id"`           // staff_sales.id
	StaffID     uint64      `json:"staff_id"`     // staff_sales.staff_id
	BookingID   string      `json:"booking_id"`   // staff_sales.booking_id
	DiscountPct float64     `json:"discount_applied"`
	PaymentMode PaymentMode `json:"payment_mode"` // staff_sales.payment_mode
	AmountCents uint32      `json:"amount_cents"` // staff_sales.amount_cents
	SaleTime    time.Time   `json:"sale_time"`    // staff_sales.sale_time
}
