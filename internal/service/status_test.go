package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/model"
)

func TestStatusGate_Resolve(t *testing.T) {
	active := identity(model.StatusActive, false, strp("acme"))
	blank := identity("", false, nil)
	repo := newIdentities(active, blank)
	g := NewStatusGate(repo)

	got, err := g.Resolve(context.Background(), active.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, got.Status)
	require.Equal(t, "acme", got.OrganizationName())

	got, err = g.Resolve(context.Background(), blank.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusUnknown, got.Status)

	_, err = g.Resolve(context.Background(), uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStatusGate_NilIDAndStoreError(t *testing.T) {
	repo := newIdentities()
	g := NewStatusGate(repo)

	_, err := g.Resolve(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Zero(t, repo.calls)

	repo.err = errors.New("connection reset")
	_, err = g.Resolve(context.Background(), uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, repo.err)
}
