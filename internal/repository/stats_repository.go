package repository

import (
	"context"
	"database/sql"
	"time"
)

// StatsRepo computes the admin overview from live table state.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Overview aggregates counts and paid revenue. Ticket counts apply lazy
// expiry: a reserved row whose hold lapsed counts as expired even though
// no write has flipped it yet.
type Overview struct {
	Users            int64  `json:"users"`
	ActiveMovies     int64  `json:"active_movies"`
	UpcomingSessions int64  `json:"upcoming_sessions"`
	TicketsPaid      int64  `json:"tickets_paid"`
	TicketsReserved  int64  `json:"tickets_reserved"`
	TicketsExpired   int64  `json:"tickets_expired"`
	TicketsCancelled int64  `json:"tickets_cancelled"`
	RevenueCents     uint64 `json:"revenue_cents"`
}

const overviewQuery = `SELECT
               (SELECT COUNT(*) FROM users),
               (SELECT COUNT(*) FROM movies WHERE is_active = 1),
               (SELECT COUNT(*) FROM sessions WHERE is_active = 1 AND start_time > ?),
               (SELECT COUNT(*) FROM tickets WHERE status = 'paid'),
               (SELECT COUNT(*) FROM tickets WHERE status = 'reserved' AND expires_at > ?),
               (SELECT COUNT(*) FROM tickets WHERE status = 'reserved' AND expires_at <= ?),
               (SELECT COUNT(*) FROM tickets WHERE status = 'cancelled'),
               (SELECT COALESCE(SUM(price_cents), 0) FROM tickets WHERE status = 'paid')`

// GetOverview runs the aggregate snapshot at the current time.
func (r *StatsRepo) GetOverview(ctx context.Context) (*Overview, error) {
	now := time.Now().UTC()
	var o Overview
	err := r.db.QueryRowContext(ctx, overviewQuery, now, now, now).Scan(
		&o.Users, &o.ActiveMovies, &o.UpcomingSessions,
		&o.TicketsPaid, &o.TicketsReserved, &o.TicketsExpired, &o.TicketsCancelled,
		&o.RevenueCents)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
