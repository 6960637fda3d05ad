// Package queue defines message payloads exchanged over the message broker.
package queue

// EntryValidatedEvent is published after every gate decision, admitting
// or not.  It carries enough context for downstream consumers to build
// an audit trail without querying the primary database.
type EntryValidatedEvent struct {
	BookingID   string `json:"booking_id"`
	ValidatorID uint64 `json:"validator_id"`
	IsGroup     bool   `json:"is_group"`
	MemberIndex *int   `json:"member_index,omitempty"`
	Admitted    bool   `json:"admitted"`
	Reason      string `json:"reason,omitempty"`
	AllEntered  bool   `json:"all_entered,omitempty"`
	ValidatedAt string `json:"validated_at"`
}

// SaleRecordedEvent is published when a staff member sells a pass on
// site.  It mirrors the staff_sales row so accounting consumers need no
// database access.
type SaleRecordedEvent struct {
	StaffID     uint64  `json:"staff_id"`
	BookingID   string  `json:"booking_id"`
	PassID      uint64  `json:"pass_id"`
	DiscountPct float64 `json:"discount_applied"`
	PaymentMode string  `json:"payment_mode"`
	AmountCents uint32  `json:"amount_cents"`
	SoldAt      string  `json:"sold_at"`
}
