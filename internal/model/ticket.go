package model

import "time"

// Ticket statuses.  reserved and paid occupy a seat; cancelled never does.
// A reserved ticket whose hold deadline has passed is logically expired and
// stops occupying its seat even before any row is updated (lazy expiry).
const (
	TicketReserved  = "reserved"
	TicketPaid      = "paid"
	TicketCancelled = "cancelled"
	TicketExpired   = "expired"
)

// ReservationTTL is how long a hold keeps a seat before it lapses.
const ReservationTTL = 30 * time.Minute

// Ticket is a reservation of one seat slot (session, row, seat).  It is
// created in the reserved state with a 30 minute hold and transitions to
// paid or cancelled; at most one reserved-unexpired or paid ticket exists
// per seat slot at any time.
//
// Fields:
//  ID         – primary key identifier.
//  SessionID  – session the seat belongs to.
//  UserID     – holder of the ticket.
//  RowNumber  – seat row, 1-based.
//  SeatNumber – seat within the row, 1-based.
//  PriceCents – price snapshot taken from the session at creation.
//  Status     – one of reserved, paid, cancelled.
//  ExpiresAt  – hold deadline; set only while reserved.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Ticket struct {
	ID         uint64     `json:"id"`
	SessionID  uint64     `json:"session_id"`
	UserID     uint64     `json:"user_id"`
	RowNumber  uint32     `json:"row_number"`
	SeatNumber uint32     `json:"seat_number"`
	PriceCents uint32     `json:"price_cents"`
	Status     string     `json:"status"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// HoldExpired reports whether the ticket is a reserved hold whose deadline
// has passed.  Expiry is a pure function of (status, expires_at, now): no
// background sweeper is involved, every read and write evaluates it fresh.
func (t *Ticket) HoldExpired(now time.Time) bool {
	return t.Status == TicketReserved && t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

// Occupies reports whether the ticket blocks its seat at the given instant.
// Paid tickets always occupy; reserved tickets occupy until their hold
// lapses; cancelled tickets never occupy.
func (t *Ticket) Occupies(now time.Time) bool {
	switch t.Status {
	case TicketPaid:
		return true
	case TicketReserved:
		return !t.HoldExpired(now)
	default:
		return false
	}
}
