package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/KaushikAtTrks/events-ticket/internal/model"
)

// BookingRepo provides persistence for bookings and their group member
// rosters.  Bookings live in the bookings table; roster slots live in
// booking_members keyed by (booking_id, member_index).  All state
// transitions after creation go through conditional UPDATEs whose WHERE
// clause carries the expected prior value, so two concurrent scanners can
// never both win the same transition.  All timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning bookings and auxiliary tables.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// wrapStore tags driver-level failures as ErrUnavailable so callers can
// tell a transient store fault apart from a domain outcome.  Row-shape
// sentinels pass through untouched.
func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrBookingNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// Insert persists a new booking together with its full member roster as a
// single transaction.  The caller must have assigned the booking id and
// set Status/PaymentStatus; member Entered flags are written as-is (false
// at creation).  The insert is atomic: either the booking and every
// roster row exist afterwards, or none do.
func (r *BookingRepo) Insert(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStore("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO bookings
               (id, user_id, pass_id, is_group, payment_status, status, discount_pct, amount_cents, sold_by)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var soldBy interface{}
	if b.SoldBy != nil {
		soldBy = *b.SoldBy
	}
	if _, err := tx.ExecContext(ctx, q,
		b.ID, b.UserID, b.PassID, b.IsGroup, string(b.PaymentStatus), string(b.Status),
		b.DiscountPct, b.AmountCents, soldBy,
	); err != nil {
		return wrapStore("insert booking", err)
	}
	if len(b.Members) > 0 {
		query := `INSERT INTO booking_members (booking_id, member_index, name, phone, entry_status) VALUES `
		args := make([]interface{}, 0, len(b.Members)*5)
		for i, m := range b.Members {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			args = append(args, b.ID, m.MemberIndex, m.Name, m.Phone, m.Entered)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return wrapStore("insert members", err)
		}
	}
	// Read back the created_at default so the returned record is complete.
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at FROM bookings WHERE id = ?`, b.ID,
	).Scan(&b.CreatedAt); err != nil {
		return wrapStore("select created_at", err)
	}
	if err := tx.Commit(); err != nil {
		return wrapStore("commit", err)
	}
	committed = true
	return nil
}

// GetByID loads a booking and, for group bookings, its roster ordered by
// member index.  It returns ErrBookingNotFound when no row exists.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT id, user_id, pass_id, is_group, payment_status, status,
                      discount_pct, amount_cents, sold_by, created_at
               FROM bookings WHERE id = ?`
	var (
		b          model.Booking
		payRaw     string
		statusRaw  string
		soldByNull sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.PassID, &b.IsGroup, &payRaw, &statusRaw,
		&b.DiscountPct, &b.AmountCents, &soldByNull, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, wrapStore("select booking", err)
	}
	if b.Status, err = model.ParseBookingStatus(statusRaw); err != nil {
		return nil, wrapStore("parse status", err)
	}
	if b.PaymentStatus, err = model.ParsePaymentStatus(payRaw); err != nil {
		return nil, wrapStore("parse payment status", err)
	}
	if soldByNull.Valid {
		sid := uint64(soldByNull.Int64)
		b.SoldBy = &sid
	}
	if b.IsGroup {
		members, err := r.membersByBookingIDs(ctx, []string{b.ID})
		if err != nil {
			return nil, err
		}
		b.Members = members[b.ID]
	}
	return &b, nil
}

// UpdateStatusIf performs the compare-and-swap at the heart of entry
// validation: it transitions the booking's status from the expected prior
// value to the new one in a single conditional UPDATE.  The returned
// boolean reports whether this caller effected the transition; false
// means another writer got there first (or the row is gone), never that
// the row was overwritten.
func (r *BookingRepo) UpdateStatusIf(ctx context.Context, id string, from, to model.BookingStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return false, wrapStore("update status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapStore("rows affected", err)
	}
	return n == 1, nil
}

// MarkMemberEntered flips one roster slot from not-entered to entered,
// conditioned on it still being not-entered at write time.  Concurrent
// scans of the same member index resolve with exactly one true result.
func (r *BookingRepo) MarkMemberEntered(ctx context.Context, bookingID string, memberIndex int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE booking_members SET entry_status = 1
         WHERE booking_id = ? AND member_index = ? AND entry_status = 0`,
		bookingID, memberIndex)
	if err != nil {
		return false, wrapStore("mark member entered", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapStore("rows affected", err)
	}
	return n == 1, nil
}

// CountUnentered returns how many roster slots of a group booking have
// not yet been admitted.
func (r *BookingRepo) CountUnentered(ctx context.Context, bookingID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM booking_members WHERE booking_id = ? AND entry_status = 0`,
		bookingID).Scan(&n)
	if err != nil {
		return 0, wrapStore("count unentered", err)
	}
	return n, nil
}

// ListByUser returns all bookings belonging to a user, newest first,
// with group rosters populated in a single follow-up query.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT id, user_id, pass_id, is_group, payment_status, status,
                      discount_pct, amount_cents, sold_by, created_at
               FROM bookings WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, wrapStore("select bookings", err)
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	groupIDs := make([]string, 0)
	for rows.Next() {
		var (
			b          model.Booking
			payRaw     string
			statusRaw  string
			soldByNull sql.NullInt64
		)
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.PassID, &b.IsGroup, &payRaw, &statusRaw,
			&b.DiscountPct, &b.AmountCents, &soldByNull, &b.CreatedAt,
		); err != nil {
			return nil, wrapStore("scan booking", err)
		}
		if b.Status, err = model.ParseBookingStatus(statusRaw); err != nil {
			return nil, wrapStore("parse status", err)
		}
		if b.PaymentStatus, err = model.ParsePaymentStatus(payRaw); err != nil {
			return nil, wrapStore("parse payment status", err)
		}
		if soldByNull.Valid {
			sid := uint64(soldByNull.Int64)
			b.SoldBy = &sid
		}
		if b.IsGroup {
			groupIDs = append(groupIDs, b.ID)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore("iterate bookings", err)
	}
	if len(groupIDs) > 0 {
		members, err := r.membersByBookingIDs(ctx, groupIDs)
		if err != nil {
			return nil, err
		}
		for i := range bookings {
			if bookings[i].IsGroup {
				bookings[i].Members = members[bookings[i].ID]
			}
		}
	}
	return bookings, nil
}

// membersByBookingIDs fetches rosters for the given booking ids in one
// query, keyed by booking id and ordered by member index.
func (r *BookingRepo) membersByBookingIDs(ctx context.Context, ids []string) (map[string][]model.GroupMember, error) {
	args := make([]interface{}, 0, len(ids))
	placeholders := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT booking_id, member_index, name, phone, entry_status
          FROM booking_members
          WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
          ORDER BY booking_id, member_index`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapStore("select members", err)
	}
	defer rows.Close()
	out := make(map[string][]model.GroupMember)
	for rows.Next() {
		var m model.GroupMember
		if err := rows.Scan(&m.BookingID, &m.MemberIndex, &m.Name, &m.Phone, &m.Entered); err != nil {
			return nil, wrapStore("scan member", err)
		}
		out[m.BookingID] = append(out[m.BookingID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStore("iterate members", err)
	}
	return out, nil
}
