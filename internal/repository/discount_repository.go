package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/KaushikAtTrks/events-ticket/internal/model"
)

// DiscountRepo provides data access to the discounts registry.  The
// booking path reads it to authorize discounted sales; writes come from
// admin endpoints.  Expiry comparisons are done in SQL against
// UTC_TIMESTAMP() so application and database clocks never disagree.
type DiscountRepo struct {
	db *sql.DB
}

// NewDiscountRepo returns a new DiscountRepo bound to the given database.
func NewDiscountRepo(db *sql.DB) *DiscountRepo { return &DiscountRepo{db: db} }

const discountColumns = `id, code, percentage, max_limit_cents, assigned_to,
                         expiry, is_active, times_used, created_at`

func scanDiscount(row interface{ Scan(...interface{}) error }) (*model.Discount, error) {
	var (
		d        model.Discount
		maxNull  sql.NullInt64
		assgNull sql.NullInt64
	)
	err := row.Scan(
		&d.ID, &d.Code, &d.Percentage, &maxNull, &assgNull,
		&d.Expiry, &d.IsActive, &d.TimesUsed, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if maxNull.Valid {
		m := uint32(maxNull.Int64)
		d.MaxLimitCents = &m
	}
	if assgNull.Valid {
		a := uint64(assgNull.Int64)
		d.AssignedTo = &a
	}
	return &d, nil
}

// GetByCode returns the discount with the given code regardless of its
// active/expiry state; callers decide usability via Discount.Usable.
// ErrDiscountNotFound is returned when the code is unknown.
func (r *DiscountRepo) GetByCode(ctx context.Context, code string) (*model.Discount, error) {
	d, err := scanDiscount(r.db.QueryRowContext(ctx,
		`SELECT `+discountColumns+` FROM discounts WHERE code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	return d, err
}

// ActiveForStaff returns the active, unexpired discount assigned to the
// given staff member, or ErrDiscountNotFound when none exists.  Staff
// sales are authorized against this record only.
func (r *DiscountRepo) ActiveForStaff(ctx context.Context, staffID uint64) (*model.Discount, error) {
	d, err := scanDiscount(r.db.QueryRowContext(ctx,
		`SELECT `+discountColumns+` FROM discounts
         WHERE assigned_to = ? AND is_active = 1 AND expiry > UTC_TIMESTAMP()
         ORDER BY percentage DESC LIMIT 1`, staffID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	return d, err
}

// ListForStaff returns all active, unexpired discounts assigned to the
// staff member, for display in the staff app.
func (r *DiscountRepo) ListForStaff(ctx context.Context, staffID uint64) ([]model.Discount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+discountColumns+` FROM discounts
         WHERE assigned_to = ? AND is_active = 1 AND expiry > UTC_TIMESTAMP()
         ORDER BY percentage DESC`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Discount, 0)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// List returns every discount in the registry, newest first.
func (r *DiscountRepo) List(ctx context.Context) ([]model.Discount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+discountColumns+` FROM discounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Discount, 0)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Create inserts a new discount and populates its generated id.  A
// duplicate code surfaces as ErrConflict.
func (r *DiscountRepo) Create(ctx context.Context, d *model.Discount) error {
	var maxLimit interface{}
	if d.MaxLimitCents != nil {
		maxLimit = *d.MaxLimitCents
	}
	var assigned interface{}
	if d.AssignedTo != nil {
		assigned = *d.AssignedTo
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO discounts (code, percentage, max_limit_cents, assigned_to, expiry, is_active)
         VALUES (?, ?, ?, ?, ?, ?)`,
		d.Code, d.Percentage, maxLimit, assigned,
		d.Expiry.UTC().Format("2006-01-02 15:04:05"), d.IsActive)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM discounts WHERE id = ?`, d.ID).Scan(&d.CreatedAt)
}

// Deactivate flips a discount to inactive.  ErrDiscountNotFound is
// returned when the id is unknown.
func (r *DiscountRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE discounts SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM discounts WHERE id = ?`, id).Scan(&one); errors.Is(err, sql.ErrNoRows) {
			return ErrDiscountNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// IncrementUsage bumps the usage counter after a discounted sale.  It is
// best-effort bookkeeping; failures do not affect the booking.
func (r *DiscountRepo) IncrementUsage(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE discounts SET times_used = times_used + 1 WHERE id = ?`, id)
	return err
}
