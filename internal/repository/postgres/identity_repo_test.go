package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/model"
)

const identitySQL = `SELECT id, status, is_admin, organization, created_at FROM identities WHERE id=\$1`

var identityCols = []string{"id", "status", "is_admin", "organization", "created_at"}

func TestIdentityRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewIdentityRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	ts := time.Now().UTC()

	mock.ExpectQuery(identitySQL).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(identityCols).AddRow(id, "active", false, ptr("north-high"), ts))
	it, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, it.ID)
	require.Equal(t, model.StatusActive, it.Status)
	require.Equal(t, "north-high", it.OrganizationName())

	mock.ExpectQuery(identitySQL).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIdentityRepo_GetByID_NullOrganizationAndUnknownStatus(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewIdentityRepo(db)
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(identitySQL).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(identityCols).AddRow(id, "suspended", true, nil, time.Now()))
	it, err := r.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, model.StatusUnknown, it.Status)
	require.True(t, it.IsAdmin)
	require.Nil(t, it.Organization)
}

func TestIdentityRepo_GetByID_OtherErrPropagates(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewIdentityRepo(db)
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(identitySQL).WithArgs(id).WillReturnError(errors.New("conn reset"))
	_, err := r.GetByID(context.Background(), id)
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}
