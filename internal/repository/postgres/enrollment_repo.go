package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/fortune-gate/internal/calendar"
	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/model"
)

// EnrollmentRepo implements EnrollmentWindowRepository using PostgreSQL.
type EnrollmentRepo struct{ db *DB }

// NewEnrollmentRepo constructs an enrollment window repository.
func NewEnrollmentRepo(db *DB) *EnrollmentRepo { return &EnrollmentRepo{db: db} }

const windowCols = `organization, start_date, end_date, created_at, updated_at`

// FindActiveOn returns windows covering d. A missing table yields an empty result.
func (r *EnrollmentRepo) FindActiveOn(ctx context.Context, d calendar.Date) ([]model.EnrollmentWindow, error) {
	const q = `
SELECT ` + windowCols + `
FROM enrollment_windows
WHERE start_date <= $1 AND end_date >= $1
ORDER BY organization ASC`
	out, err := r.query(ctx, q, dateArg(d))
	if isUndefinedTable(err) {
		return []model.EnrollmentWindow{}, nil
	}
	return out, err
}

// GetByOrganization returns a single window by organization name.
func (r *EnrollmentRepo) GetByOrganization(ctx context.Context, org string) (*model.EnrollmentWindow, error) {
	const q = `
SELECT ` + windowCols + `
FROM enrollment_windows WHERE organization=$1`
	w, err := scanWindow(r.db.Pool.QueryRow(ctx, q, org))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// List returns all windows ordered by organization.
func (r *EnrollmentRepo) List(ctx context.Context) ([]model.EnrollmentWindow, error) {
	const q = `
SELECT ` + windowCols + `
FROM enrollment_windows
ORDER BY organization ASC`
	return r.query(ctx, q)
}

// Upsert creates or replaces a window keyed by organization.
func (r *EnrollmentRepo) Upsert(ctx context.Context, w model.EnrollmentWindow) (model.EnrollmentWindow, error) {
	const q = `
INSERT INTO enrollment_windows (organization, start_date, end_date)
VALUES ($1, $2, $3)
ON CONFLICT (organization)
DO UPDATE SET start_date=EXCLUDED.start_date, end_date=EXCLUDED.end_date, updated_at=now()
RETURNING ` + windowCols
	return scanWindow(r.db.Pool.QueryRow(ctx, q, w.Organization, dateArg(w.StartDate), dateArg(w.EndDate)))
}

// Delete removes a window by organization.
func (r *EnrollmentRepo) Delete(ctx context.Context, org string) error {
	const q = `DELETE FROM enrollment_windows WHERE organization=$1`
	tag, err := r.db.Pool.Exec(ctx, q, org)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *EnrollmentRepo) query(ctx context.Context, q string, args ...any) ([]model.EnrollmentWindow, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.EnrollmentWindow{}
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanWindow(row pgx.Row) (model.EnrollmentWindow, error) {
	var (
		w          model.EnrollmentWindow
		start, end time.Time
	)
	if err := row.Scan(&w.Organization, &start, &end, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return model.EnrollmentWindow{}, err
	}
	w.StartDate = calendar.DateOf(start)
	w.EndDate = calendar.DateOf(end)
	return w, nil
}
