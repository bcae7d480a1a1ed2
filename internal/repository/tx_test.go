package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestWithTxRetriesDeadlockThenSucceeds(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := withTx(context.Background(), db, func(tx *sql.Tx) error {
		calls++
		if calls == 1 {
			return &mysql.MySQLError{Number: mysqlErrLockDeadlock}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxGivesUpAfterBudget(t *testing.T) {
	db, mock := newMock(t)
	for i := 0; i < txAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	calls := 0
	err := withTx(context.Background(), db, func(tx *sql.Tx) error {
		calls++
		return &mysql.MySQLError{Number: mysqlErrLockWaitTimeout}
	})
	assert.ErrorIs(t, err, ErrTxConflict)
	assert.Equal(t, txAttempts, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxDoesNotRetryOtherErrors(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	calls := 0
	err := withTx(context.Background(), db, func(tx *sql.Tx) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
