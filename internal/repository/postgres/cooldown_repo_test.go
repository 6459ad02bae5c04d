package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/fortune-gate/internal/model"
)

const findCooldownSQL = `SELECT email_hash, user_agent_hash, ip_hash, expires_at, created_at FROM deletion_cooldowns WHERE email_hash=\$1`

func TestCooldownRepo_FindByEmailHash(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCooldownRepo(db)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).UTC()
	created := time.Now().UTC()

	mock.ExpectQuery(findCooldownSQL).WithArgs("h").
		WillReturnRows(pgxmock.NewRows([]string{"email_hash", "user_agent_hash", "ip_hash", "expires_at", "created_at"}).
			AddRow("h", ptr("ua"), nil, exp, created))
	rec, err := r.FindByEmailHash(ctx, "h")
	require.NoError(t, err)
	require.Equal(t, "h", rec.EmailHash)
	require.Equal(t, "ua", *rec.UserAgentHash)
	require.Nil(t, rec.IPHash)
	require.Equal(t, exp, rec.ExpiresAt)

	mock.ExpectQuery(findCooldownSQL).WithArgs("none").WillReturnError(pgx.ErrNoRows)
	rec, err = r.FindByEmailHash(ctx, "none")
	require.NoError(t, err)
	require.Nil(t, rec)

	mock.ExpectQuery(findCooldownSQL).WithArgs("h").WillReturnError(errors.New("db boom"))
	_, err = r.FindByEmailHash(ctx, "h")
	require.Error(t, err)
}

func TestCooldownRepo_Upsert(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCooldownRepo(db)
	rec := model.DeletionCooldownRecord{
		EmailHash:     "h",
		UserAgentHash: ptr("ua"),
		ExpiresAt:     time.Now().Add(24 * time.Hour).UTC(),
		CreatedAt:     time.Now().UTC(),
	}
	const q = `INSERT INTO deletion_cooldowns \(email_hash, user_agent_hash, ip_hash, expires_at, created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5\) ON CONFLICT \(email_hash\) DO UPDATE`

	mock.ExpectExec(q).
		WithArgs(rec.EmailHash, rec.UserAgentHash, rec.IPHash, rec.ExpiresAt, rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Upsert(context.Background(), rec))

	mock.ExpectExec(q).
		WithArgs(rec.EmailHash, rec.UserAgentHash, rec.IPHash, rec.ExpiresAt, rec.CreatedAt).
		WillReturnError(errors.New("exec fail"))
	require.Error(t, r.Upsert(context.Background(), rec))
}

func TestCooldownRepo_Deletes(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCooldownRepo(db)
	now := time.Now().UTC()

	mock.ExpectExec(`DELETE FROM deletion_cooldowns WHERE email_hash=\$1`).
		WithArgs("h").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.DeleteByEmailHash(context.Background(), "h"))

	mock.ExpectExec(`DELETE FROM deletion_cooldowns WHERE expires_at < \$1`).
		WithArgs(now).WillReturnResult(pgxmock.NewResult("DELETE", 3))
	n, err := r.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	require.NoError(t, mock.ExpectationsWereMet())
}
