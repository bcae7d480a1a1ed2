package model

import "time"

// Session is a scheduled screening of a movie in a hall.  Its time interval
// is [StartTime, StartTime+movie.Duration()); for any hall the intervals of
// active sessions never overlap.  PriceCents is the price a ticket snapshots
// at reservation time, so later edits do not affect sold tickets.
//
// Fields:
//  ID         – primary key identifier.
//  MovieID    – movie being screened.
//  HallID     – hall where the screening takes place.
//  StartTime  – when the screening begins (UTC).
//  PriceCents – ticket price in cents at the time of booking.
//  IsActive   – whether the session is open for booking.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Session struct {
	ID         uint64    `json:"id"`
	MovieID    uint64    `json:"movie_id"`
	HallID     uint64    `json:"hall_id"`
	StartTime  time.Time `json:"start_time"`
	PriceCents uint32    `json:"price_cents"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Started reports whether the session has begun at the given instant.  A
// session that has started can no longer be booked, modified or cancelled.
func (s *Session) Started(now time.Time) bool {
	return !s.StartTime.After(now)
}

// Overlaps reports whether two half-open intervals [s1,e1) and [s2,e2) share
// at least one instant.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
