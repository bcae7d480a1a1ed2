package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jovid1242/cinema-ticketing/internal/model"
)

// HallRepo provides methods to create and retrieve halls.  Halls define the
// seat coordinate space used by the reservation engine and are only ever
// soft-deleted so ticket history keeps valid references.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

const hallColumns = `id, name, description, seat_rows, seats_per_row, is_active, created_at, updated_at`

func scanHall(row interface{ Scan(...any) error }) (*model.Hall, error) {
	var h model.Hall
	var desc sql.NullString
	err := row.Scan(&h.ID, &h.Name, &desc, &h.SeatRows, &h.SeatsPerRow, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		h.Description = &d
	}
	return &h, nil
}

// Create inserts a new hall.  Name, SeatRows and SeatsPerRow must be set;
// the handler validates the 1..50 bounds before calling.  After insert the
// row is read back to populate defaults.
func (r *HallRepo) Create(ctx context.Context, h *model.Hall) error {
	const q = `INSERT INTO halls (name, description, seat_rows, seats_per_row) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, h.Name, h.Description, h.SeatRows, h.SeatsPerRow)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	const sel = `SELECT ` + hallColumns + ` FROM halls WHERE id = ?`
	fresh, err := scanHall(r.db.QueryRowContext(ctx, sel, h.ID))
	if err != nil {
		return err
	}
	*h = *fresh
	return nil
}

// GetByID retrieves a hall by its ID.  It returns ErrHallNotFound when no
// row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	const q = `SELECT ` + hallColumns + ` FROM halls WHERE id = ?`
	h, err := scanHall(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return h, nil
}

// ListActive returns active halls, newest first, paginated.
func (r *HallRepo) ListActive(ctx context.Context, page, perPage int) ([]model.Hall, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM halls WHERE is_active = 1`).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `SELECT ` + hallColumns + ` FROM halls WHERE is_active = 1 ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	halls := make([]model.Hall, 0)
	for rows.Next() {
		h, err := scanHall(rows)
		if err != nil {
			return nil, 0, err
		}
		halls = append(halls, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return halls, total, nil
}

// HallPatch carries optional hall update fields; nil means unchanged.
type HallPatch struct {
	Name        *string
	Description *string
	SeatRows    *uint32
	SeatsPerRow *uint32
	IsActive    *bool
}

// Update applies the patch.  When the patch deactivates the hall, the same
// guard as Deactivate applies: any active future session in the hall blocks
// the change with ErrConflict.
func (r *HallRepo) Update(ctx context.Context, id uint64, p HallPatch) (*model.Hall, error) {
	if p.IsActive != nil && !*p.IsActive {
		busy, err := r.hasUpcomingSessions(ctx, id)
		if err != nil {
			return nil, err
		}
		if busy {
			return nil, ErrConflict
		}
	}
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.SeatRows != nil {
		add("seat_rows", *p.SeatRows)
	}
	if p.SeatsPerRow != nil {
		add("seats_per_row", *p.SeatsPerRow)
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}
	if len(set) > 0 {
		q := `UPDATE halls SET ` + strings.Join(set, ", ") + `, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Deactivate soft-deletes a hall. Blocked with ErrConflict while any active
// future session is scheduled in it; past sessions and tickets are kept.
func (r *HallRepo) Deactivate(ctx context.Context, id uint64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	busy, err := r.hasUpcomingSessions(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx, `UPDATE halls SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

func (r *HallRepo) hasUpcomingSessions(ctx context.Context, hallID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM sessions WHERE hall_id = ? AND is_active = 1 AND start_time > UTC_TIMESTAMP()`
	var n int64
	if err := r.db.QueryRowContext(ctx, q, hallID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
