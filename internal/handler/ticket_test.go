package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

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

// End-to-end through echo: JWT middleware, handler, repository against a
// mocked database.
func reserveRequest(t *testing.T, db *sql.DB, body string) *httptest.ResponseRecorder {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15}
	h := NewTicketHandler(cfg, repository.NewTicketRepo(db))

	e := echo.New()
	e.POST("/v1/tickets", h.Reserve, middleware.JWTAuth(cfg.JWTSecret))

	at, err := utils.NewAccessToken(cfg.JWTSecret, 11, model.RoleUser, 15)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestReserveEndpoint(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Now().UTC().Add(2 * time.Hour)
	created := time.Now().UTC()
	ticketCols := []string{"id", "session_id", "user_id", "row_number", "seat_number",
		"price_cents", "status", "expires_at", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT s.id, s.price_cents, s.start_time, s.is_active, h.seat_rows, h.seats_per_row`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price_cents", "start_time", "is_active", "seat_rows", "seats_per_row"}).
			AddRow(3, 1500, start, true, 5, 10))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, status, expires_at FROM tickets`)).
		WithArgs(uint64(3), uint32(2), uint32(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tickets`)).
		WithArgs(uint64(3), uint64(11), uint32(2), uint32(7), uint32(1500), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, session_id, user_id, row_number, seat_number, price_cents, status, expires_at, created_at, updated_at FROM tickets WHERE id = ?`)).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(ticketCols).
			AddRow(42, 3, 11, 2, 7, 1500, model.TicketReserved, created.Add(model.ReservationTTL), created, created))
	mock.ExpectCommit()

	rec := reserveRequest(t, db, `{"session_id":3,"row_number":2,"seat_number":7}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got model.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint64(42), got.ID)
	assert.Equal(t, model.TicketReserved, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveEndpointSeatTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Now().UTC().Add(2 * time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT s.id, s.price_cents, s.start_time, s.is_active, h.seat_rows, h.seats_per_row`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price_cents", "start_time", "is_active", "seat_rows", "seats_per_row"}).
			AddRow(3, 1500, start, true, 5, 10))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, status, expires_at FROM tickets`)).
		WithArgs(uint64(3), uint32(2), uint32(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "expires_at"}).
			AddRow(9, model.TicketPaid, nil))
	mock.ExpectRollback()

	rec := reserveRequest(t, db, `{"session_id":3,"row_number":2,"seat_number":7}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveEndpointRejectsMissingFields(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := reserveRequest(t, db, `{"session_id":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReserveEndpointRequiresAuth(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := config.Config{JWTSecret: "test-secret"}
	h := NewTicketHandler(cfg, repository.NewTicketRepo(db))
	e := echo.New()
	e.POST("/v1/tickets", h.Reserve, middleware.JWTAuth(cfg.JWTSecret))

	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
