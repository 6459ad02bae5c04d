package repository

import (
	"context"
	"time"

	"github.com/and161185/fortune-gate/internal/model"
)

// DeletionCooldownRepository stores hashed re-registration cooldowns, one per email hash.
type DeletionCooldownRepository interface {
	// FindByEmailHash returns the record or nil when none exists.
	FindByEmailHash(ctx context.Context, emailHash string) (*model.DeletionCooldownRecord, error)
	// Upsert inserts or overwrites the record keyed by email hash.
	Upsert(ctx context.Context, rec model.DeletionCooldownRecord) error
	// DeleteByEmailHash removes the record if present.
	DeleteByEmailHash(ctx context.Context, emailHash string) error
	// DeleteExpired removes records with expires_at < now and returns the number removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
