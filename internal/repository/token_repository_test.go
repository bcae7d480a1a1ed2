package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refreshCols = []string{"user_id", "expires_at", "revoked_at"}

func TestValidateRefreshLiveToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectRefreshQuery)).
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows(refreshCols).
			AddRow(9, time.Now().UTC().Add(24*time.Hour), nil))

	userID, err := repo.ValidateRefresh(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateRefreshRejectsDeadTokens(t *testing.T) {
	now := time.Now().UTC()
	revoked := now.Add(-time.Hour)

	cases := []struct {
		name      string
		expiresAt time.Time
		revokedAt any
	}{
		{"revoked", now.Add(24 * time.Hour), revoked},
		{"expired", now.Add(-time.Minute), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewTokenRepo(db)

			mock.ExpectQuery(regexp.QuoteMeta(selectRefreshQuery)).
				WithArgs("dead").
				WillReturnRows(sqlmock.NewRows(refreshCols).AddRow(9, tc.expiresAt, tc.revokedAt))

			_, err := repo.ValidateRefresh(context.Background(), "dead")
			assert.ErrorIs(t, err, sql.ErrNoRows)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStoreAndRevokeRefresh(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	exp := time.Now().UTC().Add(720 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta(insertRefreshQuery)).
		WithArgs(uint64(9), "hash", exp).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(revokeByHashQuery)).
		WithArgs("hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(revokeForUserQuery)).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.StoreRefresh(context.Background(), 9, "hash", exp))
	require.NoError(t, repo.RevokeByHash(context.Background(), "hash"))
	require.NoError(t, repo.RevokeAllForUser(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}
