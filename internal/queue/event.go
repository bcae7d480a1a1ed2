// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// TicketPaidEvent is published after a ticket payment commits. It carries
// enough context for downstream consumers (notifications, analytics) to
// act without querying the primary database.
type TicketPaidEvent struct {
	TicketID   uint64 `json:"ticket_id"`
	UserID     uint64 `json:"user_id"`
	SessionID  uint64 `json:"session_id"`
	MovieTitle string `json:"movie_title"`
	HallName   string `json:"hall_name"`
	RowNumber  uint32 `json:"row_number"`
	SeatNumber uint32 `json:"seat_number"`
	StartTime  string `json:"start_time"`
	PriceCents uint32 `json:"price_cents"`
	PaidAt     string `json:"paid_at"`
}
