package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/KaushikAtTrks/events-ticket/internal/model"
)

// PassRepo provides data access to the passes catalog.  The booking and
// validation paths only ever read from it; writes come from admin
// endpoints.  All timestamps are stored in UTC.
type PassRepo struct {
	db *sql.DB
}

// NewPassRepo returns a new PassRepo bound to the given database.
func NewPassRepo(db *sql.DB) *PassRepo { return &PassRepo{db: db} }

const passColumns = `id, name, type, price_cents, valid_from, valid_until,
                     max_entries, group_size, description, created_by, is_active, created_at`

func scanPass(row interface{ Scan(...interface{}) error }) (*model.Pass, error) {
	var (
		p       model.Pass
		typeRaw string
		gsNull  sql.NullInt64
		desc    sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Name, &typeRaw, &p.PriceCents, &p.ValidFrom, &p.ValidUntil,
		&p.MaxEntries, &gsNull, &desc, &p.CreatedBy, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Type, err = model.ParsePassType(typeRaw); err != nil {
		return nil, err
	}
	if gsNull.Valid {
		p.GroupSize = uint32(gsNull.Int64)
	}
	if desc.Valid {
		d := desc.String
		p.Description = &d
	}
	return &p, nil
}

// GetByID returns a single pass.  ErrPassNotFound is returned when no
// pass exists with the given id; inactive passes are still returned so
// callers can distinguish "absent" from "retired".
func (r *PassRepo) GetByID(ctx context.Context, id uint64) (*model.Pass, error) {
	p, err := scanPass(r.db.QueryRowContext(ctx,
		`SELECT `+passColumns+` FROM passes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPassNotFound
	}
	return p, err
}

// ListActive returns all passes currently on sale, ordered by price.
func (r *PassRepo) ListActive(ctx context.Context) ([]model.Pass, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+passColumns+` FROM passes WHERE is_active = 1 ORDER BY price_cents`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	passes := make([]model.Pass, 0)
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, *p)
	}
	return passes, rows.Err()
}

// Create inserts a new pass and populates its generated id and
// created_at timestamp.
func (r *PassRepo) Create(ctx context.Context, p *model.Pass) error {
	var groupSize interface{}
	if p.GroupSize > 0 {
		groupSize = p.GroupSize
	}
	var desc interface{}
	if p.Description != nil {
		desc = *p.Description
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO passes (name, type, price_cents, valid_from, valid_until,
                             max_entries, group_size, description, created_by, is_active)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, string(p.Type), p.PriceCents,
		p.ValidFrom.UTC().Format("2006-01-02 15:04:05"),
		p.ValidUntil.UTC().Format("2006-01-02 15:04:05"),
		p.MaxEntries, groupSize, desc, p.CreatedBy, p.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM passes WHERE id = ?`, p.ID).Scan(&p.CreatedAt)
}

// PassUpdate carries the optional fields of a pass update; nil fields
// are left untouched.
type PassUpdate struct {
	Name       *string
	PriceCents *uint32
	ValidUntil *string // "2006-01-02 15:04:05" in UTC
	MaxEntries *uint32
	IsActive   *bool
}

// Update applies the non-nil fields of upd to the pass.  It returns
// ErrPassNotFound when the pass does not exist and ErrConflict when no
// fields were supplied.
func (r *PassRepo) Update(ctx context.Context, id uint64, upd PassUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.PriceCents != nil {
		sets = append(sets, "price_cents = ?")
		args = append(args, *upd.PriceCents)
	}
	if upd.ValidUntil != nil {
		sets = append(sets, "valid_until = ?")
		args = append(args, *upd.ValidUntil)
	}
	if upd.MaxEntries != nil {
		sets = append(sets, "max_entries = ?")
		args = append(args, *upd.MaxEntries)
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *upd.IsActive)
	}
	if len(sets) == 0 {
		return ErrConflict
	}
	args = append(args, id)
	q := "UPDATE passes SET "
	for i, s := range sets {
		if i > 0 {
			q += ", "
		}
		q += s
	}
	q += " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either absent or unchanged; verify existence for a clean 404.
		var one int
		if err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM passes WHERE id = ?`, id).Scan(&one); errors.Is(err, sql.ErrNoRows) {
			return ErrPassNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}
