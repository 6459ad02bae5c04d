package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/model"
)

// IdentityRepo implements IdentityRepository using PostgreSQL.
type IdentityRepo struct{ db *DB }

// NewIdentityRepo constructs an identity repository.
func NewIdentityRepo(db *DB) *IdentityRepo { return &IdentityRepo{db: db} }

// GetByID selects an identity by ID.
func (r *IdentityRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	const q = `
SELECT id, status, is_admin, organization, created_at
FROM identities WHERE id=$1`
	var (
		it     model.Identity
		status string
	)
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&it.ID, &status, &it.IsAdmin, &it.Organization, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	it.Status = model.ParseStatus(status)
	return &it, nil
}
