package model

import "time"

// Hall describes a screening hall and its seat coordinate space.  Seats are
// addressed as (row, seat) pairs in [1..SeatRows] x [1..SeatsPerRow]; there is
// no per-seat table, the grid is derived from these two numbers.  Halls are
// soft-deleted only, so tickets keep valid references forever.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – human readable label for the hall.
//  Description – optional description text.
//  SeatRows    – number of seating rows (1..50).
//  SeatsPerRow – number of seats per row (1..50).
//  IsActive    – whether the hall accepts new sessions.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Hall struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	SeatRows    uint32    `json:"rows"`
	SeatsPerRow uint32    `json:"seats_per_row"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Contains reports whether the (row, seat) coordinate exists in this hall.
func (h *Hall) Contains(row, seat uint32) bool {
	return row >= 1 && row <= h.SeatRows && seat >= 1 && seat <= h.SeatsPerRow
}
