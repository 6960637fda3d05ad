package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaushikAtTrks/events-ticket/internal/model"
	"github.com/KaushikAtTrks/events-ticket/internal/repository"
)

type fakeCatalog struct {
	passes map[uint64]*model.Pass
}

func (f *fakeCatalog) GetByID(_ context.Context, id uint64) (*model.Pass, error) {
	p, ok := f.passes[id]
	if !ok {
		return nil, repository.ErrPassNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeRegistry struct {
	byCode  map[string]*model.Discount
	byStaff map[uint64]*model.Discount
}

func (f *fakeRegistry) GetByCode(_ context.Context, code string) (*model.Discount, error) {
	d, ok := f.byCode[code]
	if !ok {
		return nil, repository.ErrDiscountNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRegistry) ActiveForStaff(_ context.Context, staffID uint64) (*model.Discount, error) {
	d, ok := f.byStaff[staffID]
	if !ok || !d.Usable(time.Now().UTC()) {
		return nil, repository.ErrDiscountNotFound
	}
	cp := *d
	return &cp, nil
}

type fakeSales struct {
	mu      sync.Mutex
	records []model.StaffSale
	fail    bool
}

func (f *fakeSales) Record(_ context.Context, s *model.StaffSale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("accounting down")
	}
	f.records = append(f.records, *s)
	return nil
}

type fakeUsage struct {
	mu    sync.Mutex
	bumps []uint64
}

func (f *fakeUsage) IncrementUsage(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bumps = append(f.bumps, id)
	return nil
}

const (
	dayPassID   = 1
	groupPassID = 2
)

func testCatalog() *fakeCatalog {
	return &fakeCatalog{passes: map[uint64]*model.Pass{
		dayPassID: {
			ID: dayPassID, Name: "Day Pass", Type: model.PassDaily,
			PriceCents: 5000, MaxEntries: 1, IsActive: true,
		},
		groupPassID: {
			ID: groupPassID, Name: "Group Pass", Type: model.PassGroup,
			PriceCents: 20000, MaxEntries: 5, GroupSize: 5, IsActive: true,
		},
	}}
}

func testRegistry() *fakeRegistry {
	staffID := uint64(7)
	expiry := time.Now().UTC().Add(24 * time.Hour)
	return &fakeRegistry{
		byCode: map[string]*model.Discount{
			"SUMMER20": {ID: 10, Code: "SUMMER20", Percentage: 20, Expiry: expiry, IsActive: true},
			"STAFF15":  {ID: 11, Code: "STAFF15", Percentage: 15, AssignedTo: &staffID, Expiry: expiry, IsActive: true},
			"BYGONE":   {ID: 12, Code: "BYGONE", Percentage: 50, Expiry: time.Now().UTC().Add(-time.Hour), IsActive: true},
		},
		byStaff: map[uint64]*model.Discount{
			staffID: {ID: 11, Code: "STAFF15", Percentage: 15, AssignedTo: &staffID, Expiry: expiry, IsActive: true},
		},
	}
}

func newTestService() (*BookingService, *fakeStore, *fakeSales, *fakeUsage) {
	store := newFakeStore()
	sales := &fakeSales{}
	usage := &fakeUsage{}
	svc := NewBookingService(testCatalog(), testRegistry(), store, sales)
	svc.Usage = usage
	return svc, store, sales, usage
}

var customer = Principal{ID: 42, Role: model.RoleUser}

func TestPriceAfterDiscount(t *testing.T) {
	cases := []struct {
		price uint32
		pct   float64
		want  uint32
	}{
		{5000, 0, 5000},
		{5000, 20, 4000},
		{5000, 100, 0},
		{999, 15, 849}, // 849.15 rounds down
		{999, 15.1, 848},
		{1, 50, 1}, // 0.5 rounds up
		{0, 50, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, priceAfterDiscount(tc.price, tc.pct), "price=%d pct=%v", tc.price, tc.pct)
	}
}

func TestCreateIndividualBooking(t *testing.T) {
	svc, store, _, _ := newTestService()

	b, err := svc.Create(context.Background(), customer, CreateBookingInput{
		UserID: customer.ID,
		PassID: dayPassID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, model.BookingActive, b.Status)
	assert.Equal(t, model.PaymentPending, b.PaymentStatus)
	assert.Equal(t, uint32(5000), b.AmountCents)
	assert.Nil(t, b.SoldBy)
	assert.Empty(t, b.Members)

	stored, err := store.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.UserID, stored.UserID)
}

func TestCreateGroupBooking(t *testing.T) {
	svc, store, _, _ := newTestService()

	b, err := svc.Create(context.Background(), customer, CreateBookingInput{
		UserID:  customer.ID,
		PassID:  groupPassID,
		IsGroup: true,
		Members: []MemberInput{{Name: "ana"}, {Name: "ben", Phone: "555"}},
	})
	require.NoError(t, err)
	require.Len(t, b.Members, 2)
	assert.Equal(t, 0, b.Members[0].MemberIndex)
	assert.Equal(t, 1, b.Members[1].MemberIndex)
	for _, m := range b.Members {
		assert.False(t, m.Entered)
	}

	n, err := store.CountUnentered(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateBookingInput
		want error
	}{
		{"unknown pass", CreateBookingInput{UserID: 42, PassID: 99}, repository.ErrPassNotFound},
		{"group on individual pass", CreateBookingInput{UserID: 42, PassID: dayPassID, IsGroup: true, Members: []MemberInput{{Name: "a"}}}, ErrInvalidArgument},
		{"empty roster", CreateBookingInput{UserID: 42, PassID: groupPassID, IsGroup: true}, ErrInvalidArgument},
		{"oversized roster", CreateBookingInput{UserID: 42, PassID: groupPassID, IsGroup: true,
			Members: []MemberInput{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"}, {Name: "f"}}}, ErrInvalidArgument},
		{"unnamed member", CreateBookingInput{UserID: 42, PassID: groupPassID, IsGroup: true,
			Members: []MemberInput{{Name: "a"}, {Name: ""}}}, ErrInvalidArgument},
		{"roster on individual booking", CreateBookingInput{UserID: 42, PassID: dayPassID,
			Members: []MemberInput{{Name: "a"}}}, ErrInvalidArgument},
		{"discount above 100", CreateBookingInput{UserID: 42, PassID: dayPassID, DiscountPct: 120, DiscountCode: "SUMMER20"}, ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, customer, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateRejectsInactivePass(t *testing.T) {
	svc, _, _, _ := newTestService()
	svc.Passes.(*fakeCatalog).passes[dayPassID].IsActive = false

	_, err := svc.Create(context.Background(), customer, CreateBookingInput{UserID: 42, PassID: dayPassID})
	assert.ErrorIs(t, err, repository.ErrPassNotFound)
}

func TestCreateOnlineDiscount(t *testing.T) {
	ctx := context.Background()

	t.Run("valid code prices the booking and bumps usage", func(t *testing.T) {
		svc, _, _, usage := newTestService()
		b, err := svc.Create(ctx, customer, CreateBookingInput{
			UserID: 42, PassID: dayPassID, DiscountPct: 20, DiscountCode: "SUMMER20",
		})
		require.NoError(t, err)
		assert.Equal(t, uint32(4000), b.AmountCents)
		assert.Equal(t, float64(20), b.DiscountPct)
		assert.Equal(t, []uint64{10}, usage.bumps)
	})

	t.Run("missing code", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.Create(ctx, customer, CreateBookingInput{UserID: 42, PassID: dayPassID, DiscountPct: 10})
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("unknown code", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.Create(ctx, customer, CreateBookingInput{UserID: 42, PassID: dayPassID, DiscountPct: 10, DiscountCode: "NOPE"})
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("expired code", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.Create(ctx, customer, CreateBookingInput{UserID: 42, PassID: dayPassID, DiscountPct: 10, DiscountCode: "BYGONE"})
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("staff-bound code is not redeemable online", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.Create(ctx, customer, CreateBookingInput{UserID: 42, PassID: dayPassID, DiscountPct: 10, DiscountCode: "STAFF15"})
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("requested percentage above code grant", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.Create(ctx, customer, CreateBookingInput{UserID: 42, PassID: dayPassID, DiscountPct: 30, DiscountCode: "SUMMER20"})
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})
}

func TestCreateStaffSale(t *testing.T) {
	ctx := context.Background()
	seller := Principal{ID: 7, Role: model.RoleStaff}
	staffID := seller.ID

	t.Run("records the sale", func(t *testing.T) {
		svc, _, sales, _ := newTestService()
		b, err := svc.Create(ctx, seller, CreateBookingInput{
			UserID: 42, PassID: dayPassID, DiscountPct: 15,
			PaymentStatus: model.PaymentCash, SoldBy: &staffID, PaymentMode: model.PayModeCash,
		})
		require.NoError(t, err)
		assert.Equal(t, uint32(4250), b.AmountCents)
		require.NotNil(t, b.SoldBy)
		assert.Equal(t, staffID, *b.SoldBy)

		require.Len(t, sales.records, 1)
		rec := sales.records[0]
		assert.Equal(t, staffID, rec.StaffID)
		assert.Equal(t, b.ID, rec.BookingID)
		assert.Equal(t, b.AmountCents, rec.AmountCents)
		assert.Equal(t, model.PayModeCash, rec.PaymentMode)
	})

	t.Run("discount above staff grant", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.Create(ctx, seller, CreateBookingInput{
			UserID: 42, PassID: dayPassID, DiscountPct: 25, SoldBy: &staffID,
		})
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("no discount assigned", func(t *testing.T) {
		other := Principal{ID: 8, Role: model.RoleStaff}
		otherID := other.ID
		svc, _, _, _ := newTestService()
		_, err := svc.Create(ctx, other, CreateBookingInput{
			UserID: 42, PassID: dayPassID, DiscountPct: 5, SoldBy: &otherID,
		})
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("non-staff cannot sell", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		uid := customer.ID
		_, err := svc.Create(ctx, customer, CreateBookingInput{
			UserID: 42, PassID: dayPassID, SoldBy: &uid,
		})
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("sale record failure does not fail the booking", func(t *testing.T) {
		svc, store, sales, _ := newTestService()
		sales.fail = true
		b, err := svc.Create(ctx, seller, CreateBookingInput{
			UserID: 42, PassID: dayPassID, SoldBy: &staffID, PaymentMode: model.PayModeUPI,
		})
		require.NoError(t, err)
		_, err = store.GetByID(ctx, b.ID)
		assert.NoError(t, err)
	})
}

func TestGetEnforcesViewPolicy(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	b, err := svc.Create(ctx, customer, CreateBookingInput{UserID: customer.ID, PassID: dayPassID})
	require.NoError(t, err)

	_, err = svc.Get(ctx, customer, b.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, Principal{ID: 7, Role: model.RoleStaff}, b.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, Principal{ID: 99, Role: model.RoleUser}, b.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	_, err = svc.Get(ctx, customer, "missing")
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}
