package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jovid1242/cinema-ticketing/internal/model"
)

var userColsList = []string{"id", "name", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}

func TestUserCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(insertUserQuery)).
		WithArgs("Farid", "farid@example.com", sqlmock.AnyArg(), model.RoleUser).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByIDQuery)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(userColsList).
			AddRow(7, "Farid", "farid@example.com", "hash", model.RoleUser, true, now, now))

	// Email casing is normalized before the insert.
	u, err := repo.Create(context.Background(), "Farid", "  Farid@Example.COM ", "s3cret", model.RoleUser, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, "farid@example.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(insertUserQuery)).
		WithArgs("Farid", "farid@example.com", sqlmock.AnyArg(), model.RoleUser).
		WillReturnError(&mysql.MySQLError{Number: mysqlErrDuplicateKey})

	_, err := repo.Create(context.Background(), "Farid", "farid@example.com", "s3cret", model.RoleUser, bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdatePromotesRole(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)).
		WithArgs(model.RoleAdmin, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByIDQuery)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(userColsList).
			AddRow(7, "Farid", "farid@example.com", "hash", model.RoleAdmin, true, now, now))

	role := model.RoleAdmin
	u, err := repo.Update(context.Background(), 7, UserPatch{Role: &role}, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)).
		WithArgs("taken@example.com", uint64(7)).
		WillReturnError(&mysql.MySQLError{Number: mysqlErrDuplicateKey})

	email := " Taken@Example.com "
	_, err := repo.Update(context.Background(), 7, UserPatch{Email: &email}, bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDeactivateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM users WHERE id = ?`)).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	assert.ErrorIs(t, repo.Deactivate(context.Background(), 99), ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmailNormalizesInput(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(userByEmailQuery)).
		WithArgs("farid@example.com").
		WillReturnRows(sqlmock.NewRows(userColsList).
			AddRow(7, "Farid", "farid@example.com", "hash", model.RoleAdmin, true, now, now))

	u, err := repo.GetByEmail(context.Background(), " Farid@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
