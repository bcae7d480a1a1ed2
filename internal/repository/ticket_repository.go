// Reservation engine. A ticket moves through Free -> reserved -> {paid,
// cancelled}; a reserved hold lapses 30 minutes after creation and is then
// treated as free by every read and flipped to cancelled by the next write
// that touches it (lazy expiry, no background sweeper). The check-then-
// insert in Reserve runs as one transaction holding the session row FOR
// UPDATE: of N concurrent reserve calls for the same seat slot exactly one
// commits, the rest observe the inserted row and fail with ErrSeatTaken.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jovid1242/cinema-ticketing/internal/model"
)

// TicketRepo provides the reservation engine operations over the tickets
// table. All timestamps are UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }


const (
	// Serializes all reservation activity for one session.
	lockBookableSessionQuery = `SELECT s.id, s.price_cents, s.start_time, s.is_active, h.seat_rows, h.seats_per_row
               FROM sessions s
               JOIN halls h ON h.id = s.hall_id
               WHERE s.id = ? FOR UPDATE`

	bookableSessionQuery = `SELECT s.id, s.price_cents, s.start_time, s.is_active, h.seat_rows, h.seats_per_row
               FROM sessions s
               JOIN halls h ON h.id = s.hall_id
               WHERE s.id = ?`

	// At most one reserved-or-paid ticket exists per seat slot, enforced by
	// the Reserve flow itself: stale holds are cancelled before a new row
	// is inserted.
	occupyingTicketQuery = `SELECT id, status, expires_at FROM tickets
               WHERE session_id = ? AND row_number = ? AND seat_number = ? AND status IN ('reserved','paid')
               FOR UPDATE`

	supersedeExpiredQuery = `UPDATE tickets SET status = 'cancelled', expires_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	insertTicketQuery = `INSERT INTO tickets (session_id, user_id, row_number, seat_number, price_cents, status, expires_at) VALUES (?, ?, ?, ?, ?, 'reserved', ?)`

	selectTicketQuery = `SELECT id, session_id, user_id, row_number, seat_number, price_cents, status, expires_at, created_at, updated_at FROM tickets WHERE id = ?`

	lockTicketQuery = `SELECT t.id, t.session_id, t.user_id, t.row_number, t.seat_number, t.price_cents, t.status, t.expires_at, t.created_at, t.updated_at, s.start_time
               FROM tickets t
               JOIN sessions s ON s.id = t.session_id
               WHERE t.id = ? FOR UPDATE`

	markPaidQuery = `UPDATE tickets SET status = 'paid', expires_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	markCancelledQuery = `UPDATE tickets SET status = 'cancelled', expires_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	occupiedSeatsQuery = `SELECT row_number, seat_number FROM tickets
               WHERE session_id = ? AND (status = 'paid' OR (status = 'reserved' AND expires_at > ?))`
)

func scanTicket(row interface{ Scan(...any) error }) (*model.Ticket, error) {
	var t model.Ticket
	var exp sql.NullTime
	err := row.Scan(&t.ID, &t.SessionID, &t.UserID, &t.RowNumber, &t.SeatNumber,
		&t.PriceCents, &t.Status, &exp, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if exp.Valid {
		e := exp.Time
		t.ExpiresAt = &e
	}
	return &t, nil
}

// Reserve places a 30 minute hold on a seat slot for the user. It fails
// with ErrSessionNotFound / ErrSessionInactive / ErrSessionStarted /
// ErrSeatOutOfRange for invalid targets and ErrSeatTaken when another
// live hold or paid ticket occupies the slot. A lapsed hold on the slot
// is flipped to cancelled and superseded in the same transaction.
func (r *TicketRepo) Reserve(ctx context.Context, userID, sessionID uint64, row, seat uint32) (*model.Ticket, error) {
	var out *model.Ticket
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		var (
			sid         uint64
			priceCents  uint32
			startTime   time.Time
			isActive    bool
			seatRows    uint32
			seatsPerRow uint32
		)
		err := tx.QueryRowContext(ctx, lockBookableSessionQuery, sessionID).
			Scan(&sid, &priceCents, &startTime, &isActive, &seatRows, &seatsPerRow)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSessionNotFound
			}
			return err
		}
		if !isActive {
			return ErrSessionInactive
		}
		if !startTime.After(now) {
			return ErrSessionStarted
		}
		hall := model.Hall{SeatRows: seatRows, SeatsPerRow: seatsPerRow}
		if !hall.Contains(row, seat) {
			return ErrSeatOutOfRange
		}

		var occID uint64
		var occStatus string
		var occExp sql.NullTime
		err = tx.QueryRowContext(ctx, occupyingTicketQuery, sessionID, row, seat).
			Scan(&occID, &occStatus, &occExp)
		switch {
		case err == nil:
			occ := model.Ticket{Status: occStatus}
			if occExp.Valid {
				e := occExp.Time
				occ.ExpiresAt = &e
			}
			if !occ.HoldExpired(now) {
				return ErrSeatTaken
			}
			// Stale hold: cancel it and take the seat over.
			if _, err := tx.ExecContext(ctx, supersedeExpiredQuery, occID); err != nil {
				return err
			}
		case errors.Is(err, sql.ErrNoRows):
			// seat is free
		default:
			return err
		}

		expiresAt := now.Add(model.ReservationTTL)
		res, err := tx.ExecContext(ctx, insertTicketQuery, sessionID, userID, row, seat, priceCents, expiresAt)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		out, err = scanTicket(tx.QueryRowContext(ctx, selectTicketQuery, uint64(id)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// lockTicket loads a ticket with its session start time under FOR UPDATE
// and applies the actor check. Missing tickets report ErrTicketNotFound
// before any ownership decision, matching the API's 404-then-403 order.
func lockTicket(ctx context.Context, tx *sql.Tx, id uint64, actor model.Actor) (*model.Ticket, time.Time, error) {
	var t model.Ticket
	var exp sql.NullTime
	var sessionStart time.Time
	err := tx.QueryRowContext(ctx, lockTicketQuery, id).Scan(
		&t.ID, &t.SessionID, &t.UserID, &t.RowNumber, &t.SeatNumber,
		&t.PriceCents, &t.Status, &exp, &t.CreatedAt, &t.UpdatedAt, &sessionStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrTicketNotFound
		}
		return nil, time.Time{}, err
	}
	if exp.Valid {
		e := exp.Time
		t.ExpiresAt = &e
	}
	if !actor.Owns(t.UserID) {
		return nil, time.Time{}, ErrForbidden
	}
	return &t, sessionStart, nil
}

// ConfirmPayment transitions a reserved ticket to paid and clears its hold
// deadline. A hold that lapsed before confirmation is flipped to cancelled
// and the call fails with ErrHoldExpired; the expiry check always wins
// over a late payment. Confirmation is also refused once the session has
// started.
func (r *TicketRepo) ConfirmPayment(ctx context.Context, id uint64, actor model.Actor) (*model.Ticket, error) {
	var out *model.Ticket
	var holdLapsed bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		t, sessionStart, err := lockTicket(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		switch t.Status {
		case model.TicketPaid:
			return ErrAlreadyPaid
		case model.TicketCancelled:
			return ErrAlreadyCancelled
		}
		if t.HoldExpired(now) {
			// Commit the cancellation, then report the expiry.
			if _, err := tx.ExecContext(ctx, markCancelledQuery, id); err != nil {
				return err
			}
			holdLapsed = true
			return nil
		}
		if !sessionStart.After(now) {
			return ErrSessionStarted
		}
		if _, err := tx.ExecContext(ctx, markPaidQuery, id); err != nil {
			return err
		}
		out, err = scanTicket(tx.QueryRowContext(ctx, selectTicketQuery, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	if holdLapsed {
		return nil, ErrHoldExpired
	}
	return out, nil
}

// Cancel transitions a ticket to cancelled. Paid tickets are not
// cancellable through this path and started sessions refuse any further
// transitions. Cancelling an already cancelled ticket reports
// ErrAlreadyCancelled without mutating anything.
func (r *TicketRepo) Cancel(ctx context.Context, id uint64, actor model.Actor) (*model.Ticket, error) {
	var out *model.Ticket
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		t, sessionStart, err := lockTicket(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		switch t.Status {
		case model.TicketPaid:
			return ErrAlreadyPaid
		case model.TicketCancelled:
			return ErrAlreadyCancelled
		}
		if !sessionStart.After(now) {
			return ErrSessionStarted
		}
		if _, err := tx.ExecContext(ctx, markCancelledQuery, id); err != nil {
			return err
		}
		out, err = scanTicket(tx.QueryRowContext(ctx, selectTicketQuery, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TicketDetail is a ticket joined with its session, movie and hall for
// display. Status reflects lazy expiry: a lapsed reserved hold is
// presented as expired even before any write flips the row.
type TicketDetail struct {
	model.Ticket
	StartTime  time.Time `json:"start_time"`
	MovieID    uint64    `json:"movie_id"`
	MovieTitle string    `json:"movie_title"`
	HallID     uint64    `json:"hall_id"`
	HallName   string    `json:"hall_name"`
}

const ticketDetailColumns = `t.id, t.session_id, t.user_id, t.row_number, t.seat_number, t.price_cents, t.status, t.expires_at, t.created_at, t.updated_at,
                      s.start_time, m.id, m.title, h.id, h.name`

const ticketDetailQuery = `SELECT ` + ticketDetailColumns + `
               FROM tickets t
               JOIN sessions s ON s.id = t.session_id
               JOIN movies m ON m.id = s.movie_id
               JOIN halls h ON h.id = s.hall_id
               WHERE t.id = ?`

const listTicketsQuery = `SELECT ` + ticketDetailColumns + `
               FROM tickets t
               JOIN sessions s ON s.id = t.session_id
               JOIN movies m ON m.id = s.movie_id
               JOIN halls h ON h.id = s.hall_id
               WHERE t.user_id = ?
               ORDER BY t.created_at DESC
               LIMIT ? OFFSET ?`

const listAllTicketsQuery = `SELECT ` + ticketDetailColumns + `
               FROM tickets t
               JOIN sessions s ON s.id = t.session_id
               JOIN movies m ON m.id = s.movie_id
               JOIN halls h ON h.id = s.hall_id
               ORDER BY t.created_at DESC
               LIMIT ? OFFSET ?`

const countTicketsQuery = `SELECT COUNT(*) FROM tickets WHERE user_id = ?`

const countAllTicketsQuery = `SELECT COUNT(*) FROM tickets`

func scanTicketDetail(row interface{ Scan(...any) error }, now time.Time) (*TicketDetail, error) {
	var d TicketDetail
	var exp sql.NullTime
	err := row.Scan(&d.ID, &d.SessionID, &d.UserID, &d.RowNumber, &d.SeatNumber,
		&d.PriceCents, &d.Status, &exp, &d.CreatedAt, &d.UpdatedAt,
		&d.StartTime, &d.MovieID, &d.MovieTitle, &d.HallID, &d.HallName)
	if err != nil {
		return nil, err
	}
	if exp.Valid {
		e := exp.Time
		d.ExpiresAt = &e
	}
	if d.HoldExpired(now) {
		d.Ticket.Status = model.TicketExpired
	}
	return &d, nil
}

// GetByID returns one ticket with display details. Missing tickets report
// ErrTicketNotFound before the ownership check returns ErrForbidden.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64, actor model.Actor) (*TicketDetail, error) {
	d, err := scanTicketDetail(r.db.QueryRowContext(ctx, ticketDetailQuery, id), time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if !actor.Owns(d.UserID) {
		return nil, ErrForbidden
	}
	return d, nil
}

// ListForActor returns the actor's tickets, newest first, paginated.
// Admins see every ticket.
func (r *TicketRepo) ListForActor(ctx context.Context, actor model.Actor, page, perPage int) ([]TicketDetail, int64, error) {
	var total int64
	var rows *sql.Rows
	var err error
	if actor.IsAdmin() {
		if err = r.db.QueryRowContext(ctx, countAllTicketsQuery).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.db.QueryContext(ctx, listAllTicketsQuery, perPage, (page-1)*perPage)
	} else {
		if err = r.db.QueryRowContext(ctx, countTicketsQuery, actor.ID).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.db.QueryContext(ctx, listTicketsQuery, actor.ID, perPage, (page-1)*perPage)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	now := time.Now().UTC()
	out := make([]TicketDetail, 0)
	for rows.Next() {
		d, err := scanTicketDetail(rows, now)
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

// SeatAvailability is one cell of a session's seat map.
type SeatAvailability struct {
	Row         uint32 `json:"row_number"`
	Seat        uint32 `json:"seat_number"`
	IsAvailable bool   `json:"is_available"`
}

// SeatMap enumerates every seat of a session's hall in row-major order
// together with its availability at the time of the query.
type SeatMap struct {
	SessionID   uint64             `json:"session_id"`
	SeatRows    uint32             `json:"rows"`
	SeatsPerRow uint32             `json:"seats_per_row"`
	Seats       []SeatAvailability `json:"seats"`
}

// AvailableSeats derives the seat map of a session from current ticket
// state. A seat is unavailable iff a paid ticket or a live (unexpired)
// hold covers it; lapsed holds never block a seat. Inactive or started
// sessions have no meaningful seat map and are rejected.
func (r *TicketRepo) AvailableSeats(ctx context.Context, sessionID uint64) (*SeatMap, error) {
	now := time.Now().UTC()
	var (
		sid         uint64
		priceCents  uint32
		startTime   time.Time
		isActive    bool
		seatRows    uint32
		seatsPerRow uint32
	)
	err := r.db.QueryRowContext(ctx, bookableSessionQuery, sessionID).
		Scan(&sid, &priceCents, &startTime, &isActive, &seatRows, &seatsPerRow)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if !isActive {
		return nil, ErrSessionInactive
	}
	if !startTime.After(now) {
		return nil, ErrSessionStarted
	}

	rows, err := r.db.QueryContext(ctx, occupiedSeatsQuery, sessionID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	type coord struct{ row, seat uint32 }
	occupied := make(map[coord]struct{})
	for rows.Next() {
		var c coord
		if err := rows.Scan(&c.row, &c.seat); err != nil {
			return nil, err
		}
		occupied[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sm := &SeatMap{
		SessionID:   sessionID,
		SeatRows:    seatRows,
		SeatsPerRow: seatsPerRow,
		Seats:       make([]SeatAvailability, 0, seatRows*seatsPerRow),
	}
	for row := uint32(1); row <= seatRows; row++ {
		for seat := uint32(1); seat <= seatsPerRow; seat++ {
			_, taken := occupied[coord{row, seat}]
			sm.Seats = append(sm.Seats, SeatAvailability{Row: row, Seat: seat, IsAvailable: !taken})
		}
	}
	return sm, nil
}

// SeatRef is one occupied seat coordinate.
type SeatRef struct {
	Row  uint32 `json:"row"`
	Seat uint32 `json:"seat"`
}

// OccupiedSeats lists the seats currently blocked for a session: paid
// tickets plus reserved holds that have not lapsed. Unlike AvailableSeats
// it does not reject inactive or started sessions, so detail pages can
// show history.
func (r *TicketRepo) OccupiedSeats(ctx context.Context, sessionID uint64) ([]SeatRef, error) {
	rows, err := r.db.QueryContext(ctx, occupiedSeatsQuery, sessionID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]SeatRef, 0)
	for rows.Next() {
		var s SeatRef
		if err := rows.Scan(&s.Row, &s.Seat); err != nil {
			return nil, err
		}
		refs = append(refs, s)
	}
	return refs, rows.Err()
}
