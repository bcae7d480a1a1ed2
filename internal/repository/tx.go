package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// txAttempts bounds the automatic retry of serialization failures.  Only
// the two atomic sections (seat reserve, session overlap check) run through
// this helper; everything else fails straight through.
const txAttempts = 3

// MySQL error numbers eligible for retry.
const (
	mysqlErrLockDeadlock    = 1213
	mysqlErrLockWaitTimeout = 1205
)

// isRetryable reports whether err is a MySQL deadlock or lock wait timeout.
func isRetryable(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlErrLockDeadlock || me.Number == mysqlErrLockWaitTimeout
}

// withTx runs fn inside a transaction, retrying the whole unit a bounded
// number of times when MySQL aborts it with a deadlock or lock wait
// timeout. Any other error rolls back and is returned as-is, so no partial
// mutation ever survives. When the retry budget runs out, ErrTxConflict is
// returned and the caller may retry the operation once.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		err = runTx(ctx, db, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return ErrTxConflict
}

func runTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
