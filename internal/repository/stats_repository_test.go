package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOverview(t *testing.T) {
	db, mock := newMock(t)
	repo := NewStatsRepo(db)

	cols := []string{"users", "active_movies", "upcoming_sessions",
		"tickets_paid", "tickets_reserved", "tickets_expired", "tickets_cancelled", "revenue_cents"}
	mock.ExpectQuery(regexp.QuoteMeta(overviewQuery)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(42, 7, 3, 120, 5, 2, 14, 1440000))

	o, err := repo.GetOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), o.Users)
	assert.Equal(t, int64(7), o.ActiveMovies)
	assert.Equal(t, int64(3), o.UpcomingSessions)
	assert.Equal(t, int64(120), o.TicketsPaid)
	assert.Equal(t, int64(5), o.TicketsReserved)
	assert.Equal(t, int64(2), o.TicketsExpired)
	assert.Equal(t, int64(14), o.TicketsCancelled)
	assert.Equal(t, uint64(1440000), o.RevenueCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}
