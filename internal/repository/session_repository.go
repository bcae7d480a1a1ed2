// Session scheduling. A session occupies the half-open interval
// [start_time, start_time + movie.duration_minutes) in its hall; for any
// hall the intervals of active sessions never overlap. The overlap check
// and the insert/update run inside one transaction that locks the hall row
// FOR UPDATE, so concurrent scheduling attempts for the same hall
// serialize and exactly one of two conflicting requests wins.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jovid1242/cinema-ticketing/internal/model"
)

// SessionRepo manages persistence for sessions.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}


const (
	// Serializes all scheduling for one hall.
	lockHallQuery = `SELECT id, is_active FROM halls WHERE id = ? FOR UPDATE`

	schedulingMovieQuery = `SELECT duration_minutes, is_active FROM movies WHERE id = ?`

	// Two intervals [s1,e1) and [s2,e2) overlap iff s1 < e2 AND s2 < e1.
	// The existing session's end is derived from its movie's duration.
	sessionOverlapQuery = `SELECT COUNT(*) FROM sessions s
               JOIN movies m ON m.id = s.movie_id
               WHERE s.hall_id = ? AND s.is_active = 1
                 AND s.start_time < ?
                 AND DATE_ADD(s.start_time, INTERVAL m.duration_minutes MINUTE) > ?`

	sessionOverlapExcludingQuery = `SELECT COUNT(*) FROM sessions s
               JOIN movies m ON m.id = s.movie_id
               WHERE s.hall_id = ? AND s.id <> ? AND s.is_active = 1
                 AND s.start_time < ?
                 AND DATE_ADD(s.start_time, INTERVAL m.duration_minutes MINUTE) > ?`

	insertSessionQuery = `INSERT INTO sessions (movie_id, hall_id, start_time, price_cents) VALUES (?, ?, ?, ?)`

	selectSessionQuery = `SELECT id, movie_id, hall_id, start_time, price_cents, is_active, created_at, updated_at FROM sessions WHERE id = ?`

	lockSessionQuery = `SELECT id, movie_id, hall_id, start_time, price_cents, is_active, created_at, updated_at FROM sessions WHERE id = ? FOR UPDATE`

	updateSessionQuery = `UPDATE sessions SET movie_id = ?, hall_id = ?, start_time = ?, price_cents = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	paidTicketCountQuery = `SELECT COUNT(*) FROM tickets WHERE session_id = ? AND status = 'paid'`

	deactivateSessionQuery = `UPDATE sessions SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
)

func scanSession(row interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.MovieID, &s.HallID, &s.StartTime, &s.PriceCents, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// checkSchedulable locks the hall row and loads the movie duration within
// the caller's transaction. requireActive applies the inactive-reference
// guard; updates only enforce it on references the patch actually changes.
func checkSchedulable(ctx context.Context, tx *sql.Tx, hallID, movieID uint64, requireActiveHall, requireActiveMovie bool) (time.Duration, error) {
	var id uint64
	var hallActive bool
	if err := tx.QueryRowContext(ctx, lockHallQuery, hallID).Scan(&id, &hallActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInvalidReference
		}
		return 0, err
	}
	if requireActiveHall && !hallActive {
		return 0, ErrHallInactive
	}
	var duration uint32
	var movieActive bool
	if err := tx.QueryRowContext(ctx, schedulingMovieQuery, movieID).Scan(&duration, &movieActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInvalidReference
		}
		return 0, err
	}
	if requireActiveMovie && !movieActive {
		return 0, ErrMovieInactive
	}
	return time.Duration(duration) * time.Minute, nil
}

// Create schedules a new session. The hall row is locked for the duration
// of the transaction so that two concurrent creations for the same hall
// cannot both pass the overlap check. On success the generated ID and
// DB-default fields are populated on s.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		duration, err := checkSchedulable(ctx, tx, s.HallID, s.MovieID, true, true)
		if err != nil {
			return err
		}
		start := s.StartTime.UTC()
		end := start.Add(duration)
		var overlapping int64
		if err := tx.QueryRowContext(ctx, sessionOverlapQuery, s.HallID, end, start).Scan(&overlapping); err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrConflict
		}
		res, err := tx.ExecContext(ctx, insertSessionQuery, s.MovieID, s.HallID, start, s.PriceCents)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		fresh, err := scanSession(tx.QueryRowContext(ctx, selectSessionQuery, uint64(id)))
		if err != nil {
			return err
		}
		*s = *fresh
		return nil
	})
}

// SessionPatch carries optional session update fields; nil means unchanged.
type SessionPatch struct {
	MovieID    *uint64
	HallID     *uint64
	StartTime  *time.Time
	PriceCents *uint32
	IsActive   *bool
}

// Update applies the patch to a not-yet-started session, re-running the
// overlap check against all other active sessions in the effective hall
// with the effective movie duration and start time. A session whose start
// time is already in the past is immutable and fails with
// ErrSessionStarted. Inactive movie/hall references only fail when the
// patch actually changes them.
func (r *SessionRepo) Update(ctx context.Context, id uint64, p SessionPatch) (*model.Session, error) {
	var out *model.Session
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		cur, err := scanSession(tx.QueryRowContext(ctx, lockSessionQuery, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSessionNotFound
			}
			return err
		}
		if cur.Started(time.Now().UTC()) {
			return ErrSessionStarted
		}
		movieID, hallID, start := cur.MovieID, cur.HallID, cur.StartTime
		price, active := cur.PriceCents, cur.IsActive
		if p.MovieID != nil {
			movieID = *p.MovieID
		}
		if p.HallID != nil {
			hallID = *p.HallID
		}
		if p.StartTime != nil {
			start = p.StartTime.UTC()
		}
		if p.PriceCents != nil {
			price = *p.PriceCents
		}
		if p.IsActive != nil {
			active = *p.IsActive
		}
		duration, err := checkSchedulable(ctx, tx, hallID, movieID, p.HallID != nil, p.MovieID != nil)
		if err != nil {
			return err
		}
		if active {
			end := start.Add(duration)
			var overlapping int64
			if err := tx.QueryRowContext(ctx, sessionOverlapExcludingQuery, hallID, id, end, start).Scan(&overlapping); err != nil {
				return err
			}
			if overlapping > 0 {
				return ErrConflict
			}
		}
		if _, err := tx.ExecContext(ctx, updateSessionQuery, movieID, hallID, start, price, active, id); err != nil {
			return err
		}
		out, err = scanSession(tx.QueryRowContext(ctx, selectSessionQuery, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Deactivate soft-deletes a session. Started sessions are immutable and
// sessions with sold (paid) tickets cannot be taken down; reserved holds
// on the session simply lapse.
func (r *SessionRepo) Deactivate(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		cur, err := scanSession(tx.QueryRowContext(ctx, lockSessionQuery, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSessionNotFound
			}
			return err
		}
		if cur.Started(time.Now().UTC()) {
			return ErrSessionStarted
		}
		var paid int64
		if err := tx.QueryRowContext(ctx, paidTicketCountQuery, id).Scan(&paid); err != nil {
			return err
		}
		if paid > 0 {
			return ErrConflict
		}
		_, err = tx.ExecContext(ctx, deactivateSessionQuery, id)
		return err
	})
}

// SessionDetail bundles a session with its movie and hall for display.
type SessionDetail struct {
	model.Session
	Movie model.Movie `json:"movie"`
	Hall  model.Hall  `json:"hall"`
}

const sessionDetailColumns = `s.id, s.movie_id, s.hall_id, s.start_time, s.price_cents, s.is_active, s.created_at, s.updated_at,
                      m.id, m.title, m.description, m.poster_url, m.duration_minutes, m.director, m.genre, m.release_year, m.rating, m.is_active, m.created_at, m.updated_at,
                      h.id, h.name, h.description, h.seat_rows, h.seats_per_row, h.is_active, h.created_at, h.updated_at`

const sessionDetailQuery = `SELECT ` + sessionDetailColumns + `
               FROM sessions s
               JOIN movies m ON m.id = s.movie_id
               JOIN halls h ON h.id = s.hall_id
               WHERE s.id = ?`

const upcomingSessionsQuery = `SELECT ` + sessionDetailColumns + `
               FROM sessions s
               JOIN movies m ON m.id = s.movie_id
               JOIN halls h ON h.id = s.hall_id
               WHERE s.is_active = 1 AND s.start_time > ?
               ORDER BY s.start_time ASC
               LIMIT ? OFFSET ?`

const upcomingSessionsCountQuery = `SELECT COUNT(*) FROM sessions WHERE is_active = 1 AND start_time > ?`

const upcomingSessionsByMovieQuery = `SELECT ` + sessionDetailColumns + `
               FROM sessions s
               JOIN movies m ON m.id = s.movie_id
               JOIN halls h ON h.id = s.hall_id
               WHERE s.movie_id = ? AND s.is_active = 1 AND s.start_time > ?
               ORDER BY s.start_time ASC`

func scanSessionDetail(row interface{ Scan(...any) error }) (*SessionDetail, error) {
	var d SessionDetail
	var mPoster, hDesc sql.NullString
	var mRating sql.NullFloat64
	err := row.Scan(
		&d.ID, &d.MovieID, &d.HallID, &d.StartTime, &d.PriceCents, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
		&d.Movie.ID, &d.Movie.Title, &d.Movie.Description, &mPoster, &d.Movie.DurationMinutes,
		&d.Movie.Director, &d.Movie.Genre, &d.Movie.ReleaseYear, &mRating, &d.Movie.IsActive,
		&d.Movie.CreatedAt, &d.Movie.UpdatedAt,
		&d.Hall.ID, &d.Hall.Name, &hDesc, &d.Hall.SeatRows, &d.Hall.SeatsPerRow, &d.Hall.IsActive,
		&d.Hall.CreatedAt, &d.Hall.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if mPoster.Valid {
		p := mPoster.String
		d.Movie.PosterURL = &p
	}
	if mRating.Valid {
		rt := mRating.Float64
		d.Movie.Rating = &rt
	}
	if hDesc.Valid {
		ds := hDesc.String
		d.Hall.Description = &ds
	}
	return &d, nil
}

// GetByID retrieves a session with its movie and hall.  Returns
// ErrSessionNotFound when the session does not exist.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*SessionDetail, error) {
	d, err := scanSessionDetail(r.db.QueryRowContext(ctx, sessionDetailQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListUpcoming returns active future sessions ordered by start time
// ascending, with movie and hall attached, paginated.
func (r *SessionRepo) ListUpcoming(ctx context.Context, now time.Time, page, perPage int) ([]SessionDetail, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, upcomingSessionsCountQuery, now.UTC()).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, upcomingSessionsQuery, now.UTC(), perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]SessionDetail, 0)
	for rows.Next() {
		d, err := scanSessionDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListUpcomingByMovie returns the active future sessions of one movie,
// used by the public movie page to show available screenings.
func (r *SessionRepo) ListUpcomingByMovie(ctx context.Context, movieID uint64, now time.Time) ([]SessionDetail, error) {
	rows, err := r.db.QueryContext(ctx, upcomingSessionsByMovieQuery, movieID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SessionDetail, 0)
	for rows.Next() {
		d, err := scanSessionDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
