package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/KaushikAtTrks/events-ticket/internal/model"
)

// StaffSaleRepo provides data access to staff_sales, the auxiliary
// accounting trail for on-site assisted sales.  Records here are
// best-effort: admission correctness never depends on them.
type StaffSaleRepo struct {
	db *sql.DB
}

// NewStaffSaleRepo returns a new StaffSaleRepo bound to the given database.
func NewStaffSaleRepo(db *sql.DB) *StaffSaleRepo { return &StaffSaleRepo{db: db} }

const saleColumns = `id, staff_id, booking_id, discount_pct, payment_mode, amount_cents, sale_time`

func scanSale(row interface{ Scan(...interface{}) error }) (*model.StaffSale, error) {
	var (
		s       model.StaffSale
		modeRaw string
	)
	err := row.Scan(&s.ID, &s.StaffID, &s.BookingID, &s.DiscountPct, &modeRaw, &s.AmountCents, &s.SaleTime)
	if err != nil {
		return nil, err
	}
	if s.PaymentMode, err = model.ParsePaymentMode(modeRaw); err != nil {
		return nil, err
	}
	return &s, nil
}

// Record inserts a sale row and populates its generated id and sale_time.
func (r *StaffSaleRepo) Record(ctx context.Context, s *model.StaffSale) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO staff_sales (staff_id, booking_id, discount_pct, payment_mode, amount_cents)
         VALUES (?, ?, ?, ?, ?)`,
		s.StaffID, s.BookingID, s.DiscountPct, string(s.PaymentMode), s.AmountCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT sale_time FROM staff_sales WHERE id = ?`, s.ID).Scan(&s.SaleTime)
}

// ListByStaff returns all sales recorded by one staff member, newest first.
func (r *StaffSaleRepo) ListByStaff(ctx context.Context, staffID uint64) ([]model.StaffSale, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+saleColumns+` FROM staff_sales WHERE staff_id = ? ORDER BY sale_time DESC`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.StaffSale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListBetween returns sales in the half-open window [from, to), newest
// first.  Zero times disable the corresponding bound.  This feeds the
// admin sales report; it never mutates state.
func (r *StaffSaleRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.StaffSale, error) {
	q := `SELECT ` + saleColumns + ` FROM staff_sales`
	args := make([]interface{}, 0, 2)
	switch {
	case !from.IsZero() && !to.IsZero():
		q += ` WHERE sale_time >= ? AND sale_time < ?`
		args = append(args,
			from.UTC().Format("2006-01-02 15:04:05"),
			to.UTC().Format("2006-01-02 15:04:05"))
	case !from.IsZero():
		q += ` WHERE sale_time >= ?`
		args = append(args, from.UTC().Format("2006-01-02 15:04:05"))
	case !to.IsZero():
		q += ` WHERE sale_time < ?`
		args = append(args, to.UTC().Format("2006-01-02 15:04:05"))
	}
	q += ` ORDER BY sale_time DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.StaffSale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
