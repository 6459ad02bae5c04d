package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/fortune-gate/internal/model"
)

// UsageEventRepository stores quota-consuming events.
type UsageEventRepository interface {
	// MostRecentInRange returns the latest event with from <= occurred_at < to, or nil.
	MostRecentInRange(ctx context.Context, identityID uuid.UUID, from, to time.Time) (*model.UsageEvent, error)
	// Insert stores a new event.
	Insert(ctx context.Context, ev model.UsageEvent) error
	// DeleteBefore removes events older than t and returns the number removed.
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
}
