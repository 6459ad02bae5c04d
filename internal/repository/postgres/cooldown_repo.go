package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/fortune-gate/internal/model"
)

// CooldownRepo implements DeletionCooldownRepository using PostgreSQL.
type CooldownRepo struct{ db *DB }

// NewCooldownRepo constructs a deletion cooldown repository.
func NewCooldownRepo(db *DB) *CooldownRepo { return &CooldownRepo{db: db} }

// FindByEmailHash returns the cooldown for the hash or nil.
func (r *CooldownRepo) FindByEmailHash(ctx context.Context, emailHash string) (*model.DeletionCooldownRecord, error) {
	const q = `
SELECT email_hash, user_agent_hash, ip_hash, expires_at, created_at
FROM deletion_cooldowns WHERE email_hash=$1`
	var rec model.DeletionCooldownRecord
	err := r.db.Pool.QueryRow(ctx, q, emailHash).
		Scan(&rec.EmailHash, &rec.UserAgentHash, &rec.IPHash, &rec.ExpiresAt, &rec.CreatedAt)
	switch {
	case err == nil:
		return &rec, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil
	default:
		return nil, err
	}
}

// Upsert writes the cooldown, replacing any previous record for the same hash.
func (r *CooldownRepo) Upsert(ctx context.Context, rec model.DeletionCooldownRecord) error {
	const q = `
INSERT INTO deletion_cooldowns (email_hash, user_agent_hash, ip_hash, expires_at, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (email_hash)
DO UPDATE SET user_agent_hash=EXCLUDED.user_agent_hash, ip_hash=EXCLUDED.ip_hash,
  expires_at=EXCLUDED.expires_at, created_at=EXCLUDED.created_at`
	_, err := r.db.Pool.Exec(ctx, q, rec.EmailHash, rec.UserAgentHash, rec.IPHash, rec.ExpiresAt, rec.CreatedAt)
	return err
}

// DeleteByEmailHash removes the cooldown for the hash.
func (r *CooldownRepo) DeleteByEmailHash(ctx context.Context, emailHash string) error {
	const q = `DELETE FROM deletion_cooldowns WHERE email_hash=$1`
	_, err := r.db.Pool.Exec(ctx, q, emailHash)
	return err
}

// DeleteExpired removes all cooldowns that expired before now.
func (r *CooldownRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM deletion_cooldowns WHERE expires_at < $1`
	tag, err := r.db.Pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
