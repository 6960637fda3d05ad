package model

import (
	"fmt"
	"time"
)

// PassType enumerates the pass categories sold for the event.  Group
// passes carry a member capacity; all other types admit a single person.
type PassType string

const (
	PassDaily    PassType = "daily"
	PassSeasonal PassType = "seasonal"
	PassVIP      PassType = "vip"
	PassGroup    PassType = "group"
	PassStudent  PassType = "student"
)

// ParsePassType validates a raw pass type string.
func ParsePassType(s string) (PassType, error) {
	switch PassType(s) {
	case PassDaily, PassSeasonal, PassVIP, PassGroup, PassStudent:
		return PassType(s), nil
	}
	return "", fmt.Errorf("unknown pass type %q", s)
}

// Pass is a catalog item defining the price and validity window of an
// admission right.  GroupSize is zero for individual passes and holds the
// roster capacity for group passes.  The catalog is read-only from the
// booking path; only admins mutate it.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name.
//  Type        – pass category.
//  PriceCents  – list price in cents.
//  ValidFrom   – start of the validity window (UTC).
//  ValidUntil  – end of the validity window (UTC).
//  MaxEntries  – entries allowed per booking (informational).
//  GroupSize   – roster capacity; zero for non-group passes.
//  Description – optional free-form text.
//  CreatedBy   – admin who created the pass.
//  IsActive    – whether the pass is currently sellable.
//  CreatedAt   – creation timestamp.
type Pass struct {
	ID          uint64    `json:"id"`           // passes.id
	Name        string    `json:"name"`         // passes.name
	Type        PassType  `json:"type"`         // passes.type
	PriceCents  uint32    `json:"price_cents"`  // passes.price_cents
	ValidFrom   time.Time `json:"valid_from"`   // passes.valid_from
	ValidUntil  time.Time `json:"valid_until"`  // passes.valid_until
	MaxEntries  uint32    `json:"max_entries"`  // passes.max_entries
	GroupSize   uint32    `json:"group_size,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   uint64    `json:"created_by"` // passes.created_by
	IsActive    bool      `json:"is_active"`  // passes.is_active
	CreatedAt   time.Time `json:"created_at"` // passes.created_at
}
