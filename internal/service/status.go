// Package service contains the access and usage-quota decision services.
package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/model"
	"github.com/and161185/fortune-gate/internal/repository"
)

// StatusGate resolves an identity to its lifecycle status and admin flag.
type StatusGate interface {
	// Resolve loads the identity; errs.ErrNotFound when it does not exist.
	Resolve(ctx context.Context, id uuid.UUID) (*model.Identity, error)
}

type StatusGateImpl struct {
	identities repository.IdentityRepository
}

// NewStatusGate constructs a StatusGate over the identity repository.
func NewStatusGate(identities repository.IdentityRepository) *StatusGateImpl {
	return &StatusGateImpl{identities: identities}
}

// Resolve reads the identity. It has no side effects and never fails open:
// a missing identity is reported as errs.ErrNotFound and store errors propagate.
func (g *StatusGateImpl) Resolve(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty identity id", errs.ErrValidation)
	}
	it, err := g.identities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.Status == "" {
		it.Status = model.StatusUnknown
	}
	return it, nil
}
