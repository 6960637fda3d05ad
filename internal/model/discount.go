package model

import "time"

// Discount is a registry entry authorizing a percentage off the list
// price.  A discount may be assigned to a specific staff member, in
// which case only that staff identity may apply it during an assisted
// sale.  Discounts are validated at booking creation only; a booking
// keeps its applied percentage even if the discount later expires.
//
// Fields:
//  ID            – primary key identifier.
//  Code          – unique discount code.
//  Percentage    – authorized discount percentage (0–100).
//  MaxLimitCents – optional cap on the discounted amount, in cents.
//  AssignedTo    – staff user id this discount is bound to (nullable).
//  Expiry        – expiry timestamp (UTC).
//  IsActive      – whether the discount may currently be applied.
//  TimesUsed     – running usage counter.
//  CreatedAt     – creation timestamp.
type Discount struct {
	ID            uint64    `json:"id"`         // discounts.id
	Code          string    `json:"code"`       // discounts.code
	Percentage    float64   `json:"percentage"` // discounts.percentage
	MaxLimitCents *uint32   `json:"max_limit_cents,omitempty"`
	AssignedTo    *uint64   `json:"assigned_to,omitempty"` // discounts.assigned_to
	Expiry        time.Time `json:"expiry"`                // discounts.expiry
	IsActive      bool      `json:"is_active"`             // discounts.is_active
	TimesUsed     uint32    `json:"times_used"`            // discounts.times_used
	CreatedAt     time.Time `json:"created_at"`            // discounts.created_at
}

// Usable reports whether the discount can be applied at the given
// instant: it must be active and not yet expired.
func (d *Discount) Usable(now time.Time) bool {
	return d.IsActive && d.Expiry.After(now)
}
