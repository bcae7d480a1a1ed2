package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovid1242/cinema-ticketing/internal/config"
	"github.com/jovid1242/cinema-ticketing/internal/middleware"
	"github.com/jovid1242/cinema-ticketing/internal/model"
	"github.com/jovid1242/cinema-ticketing/internal/repository"
	"github.com/jovid1242/cinema-ticketing/internal/utils"
)

func deleteUserRequest(t *testing.T, db *sql.DB, adminID uint64, path string) *httptest.ResponseRecorder {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15}
	h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))

	e := echo.New()
	e.DELETE("/v1/users/:id", h.DeleteUser,
		middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole(model.RoleAdmin))

	at, err := utils.NewAccessToken(cfg.JWTSecret, adminID, model.RoleAdmin, 15)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// No database expectations: the guard fires before any query.
	rec := deleteUserRequest(t, db, 5, "/v1/users/5")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserSoftDeletes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_active = 0`)).
		WithArgs(uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := deleteUserRequest(t, db, 5, "/v1/users/8")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
