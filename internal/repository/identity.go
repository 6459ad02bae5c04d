// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/fortune-gate/internal/model"
)

// IdentityRepository provides read access to accounts owned by the account subsystem.
type IdentityRepository interface {
	// GetByID loads an identity by ID; errs.ErrNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Identity, error)
}
