package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/model"
)

// UsageRepo implements UsageEventRepository using PostgreSQL.
type UsageRepo struct{ db *DB }

// NewUsageRepo constructs a usage event repository.
func NewUsageRepo(db *DB) *UsageRepo { return &UsageRepo{db: db} }

// MostRecentInRange returns the latest event in [from, to) or nil.
func (r *UsageRepo) MostRecentInRange(ctx context.Context, identityID uuid.UUID, from, to time.Time) (*model.UsageEvent, error) {
	const q = `
SELECT id, identity_id, occurred_at
FROM usage_events
WHERE identity_id=$1 AND occurred_at >= $2 AND occurred_at < $3
ORDER BY occurred_at DESC
LIMIT 1`
	var ev model.UsageEvent
	err := r.db.Pool.QueryRow(ctx, q, identityID, from, to).Scan(&ev.ID, &ev.IdentityID, &ev.OccurredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ev, nil
}

// Insert stores a usage event.
func (r *UsageRepo) Insert(ctx context.Context, ev model.UsageEvent) error {
	const q = `INSERT INTO usage_events (id, identity_id, occurred_at) VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, ev.ID, ev.IdentityID, ev.OccurredAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("usage event %s: %w", ev.ID, errs.ErrAlreadyExists)
	}
	return err
}

// DeleteBefore removes events that occurred before t.
func (r *UsageRepo) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	const q = `DELETE FROM usage_events WHERE occurred_at < $1`
	tag, err := r.db.Pool.Exec(ctx, q, t)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
