package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return tm
}

func TestParseBookingStatus(t *testing.T) {
	for _, s := range []string{"active", "used", "cancelled"} {
		got, err := ParseBookingStatus(s)
		assert.NoError(t, err)
		assert.Equal(t, BookingStatus(s), got)
	}
	for _, s := range []string{"", "ACTIVE", "expired", "done"} {
		_, err := ParseBookingStatus(s)
		assert.Error(t, err, "%q should be rejected", s)
	}
}

func TestParsePaymentStatus(t *testing.T) {
	for _, s := range []string{"pending", "paid", "cash", "failed"} {
		got, err := ParsePaymentStatus(s)
		assert.NoError(t, err)
		assert.Equal(t, PaymentStatus(s), got)
	}
	_, err := ParsePaymentStatus("refunded")
	assert.Error(t, err)
}

func TestParsePassType(t *testing.T) {
	for _, s := range []string{"daily", "seasonal", "vip", "group", "student"} {
		got, err := ParsePassType(s)
		assert.NoError(t, err)
		assert.Equal(t, PassType(s), got)
	}
	_, err := ParsePassType("weekly")
	assert.Error(t, err)
}

func TestParsePaymentMode(t *testing.T) {
	for _, s := range []string{"cash", "upi"} {
		got, err := ParsePaymentMode(s)
		assert.NoError(t, err)
		assert.Equal(t, PaymentMode(s), got)
	}
	_, err := ParsePaymentMode("card")
	assert.Error(t, err)
}

func TestSoldByLabel(t *testing.T) {
	b := &Booking{}
	assert.Equal(t, "online", b.SoldByLabel())

	staff := uint64(7)
	b.SoldBy = &staff
	assert.Equal(t, "7", b.SoldByLabel())
}

func TestDiscountUsable(t *testing.T) {
	now := mustTime(t, "2026-08-30T12:00:00Z")
	d := Discount{IsActive: true, Expiry: mustTime(t, "2026-09-01T00:00:00Z")}
	assert.True(t, d.Usable(now))

	d.IsActive = false
	assert.False(t, d.Usable(now))

	d.IsActive = true
	d.Expiry = mustTime(t, "2026-08-30T11:59:59Z")
	assert.False(t, d.Usable(now))
}
