package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jovid1242/cinema-ticketing/internal/model"
)

// MovieRepo provides CRUD access to the movies table.  Movies are static
// reference data: the scheduler reads them for duration and active flags,
// the public catalog lists them with optional filters.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = `id, title, description, poster_url, duration_minutes, director, genre, release_year, rating, is_active, created_at, updated_at`

func scanMovie(row interface{ Scan(...any) error }) (*model.Movie, error) {
	var m model.Movie
	var poster sql.NullString
	var rating sql.NullFloat64
	err := row.Scan(&m.ID, &m.Title, &m.Description, &poster, &m.DurationMinutes,
		&m.Director, &m.Genre, &m.ReleaseYear, &rating, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if poster.Valid {
		p := poster.String
		m.PosterURL = &p
	}
	if rating.Valid {
		r := rating.Float64
		m.Rating = &r
	}
	return &m, nil
}

// Create inserts a new movie and populates the generated ID and DB-default
// fields on the provided struct.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, description, poster_url, duration_minutes, director, genre, release_year, rating) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.PosterURL,
		m.DurationMinutes, m.Director, m.Genre, m.ReleaseYear, m.Rating)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	const sel = `SELECT ` + movieColumns + ` FROM movies WHERE id = ?`
	fresh, err := scanMovie(r.db.QueryRowContext(ctx, sel, m.ID))
	if err != nil {
		return err
	}
	*m = *fresh
	return nil
}

// GetByID retrieves a movie by its ID.  It returns ErrMovieNotFound when no
// matching row exists.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT ` + movieColumns + ` FROM movies WHERE id = ?`
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return m, nil
}

// MovieFilter narrows the public catalog listing.  Zero values mean "no
// constraint" for the corresponding field.
type MovieFilter struct {
	Search string // substring match against the title
	Genre  string
	Year   uint16
}

// ListActive returns active movies matching the filter, newest first, with
// page/perPage pagination. The second return value is the total count of
// matching rows before pagination.
func (r *MovieRepo) ListActive(ctx context.Context, f MovieFilter, page, perPage int) ([]model.Movie, int64, error) {
	where := []string{"is_active = 1"}
	args := []any{}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+s+"%")
	}
	if f.Genre != "" {
		where = append(where, "genre = ?")
		args = append(args, f.Genre)
	}
	if f.Year != 0 {
		where = append(where, "release_year = ?")
		args = append(args, f.Year)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + movieColumns + ` FROM movies WHERE ` + cond + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	movies := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, err
		}
		movies = append(movies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

// MoviePatch carries the optional fields of a movie update.  Nil fields are
// left unchanged.
type MoviePatch struct {
	Title           *string
	Description     *string
	PosterURL       *string
	DurationMinutes *uint32
	Director        *string
	Genre           *string
	ReleaseYear     *uint16
	Rating          *float64
	IsActive        *bool
}

// Update applies the patch to the movie and returns the refreshed row.
// Duration changes do not re-validate existing sessions; their intervals
// were checked at scheduling time.
func (r *MovieRepo) Update(ctx context.Context, id uint64, p MoviePatch) (*model.Movie, error) {
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.PosterURL != nil {
		add("poster_url", *p.PosterURL)
	}
	if p.DurationMinutes != nil {
		add("duration_minutes", *p.DurationMinutes)
	}
	if p.Director != nil {
		add("director", *p.Director)
	}
	if p.Genre != nil {
		add("genre", *p.Genre)
	}
	if p.ReleaseYear != nil {
		add("release_year", *p.ReleaseYear)
	}
	if p.Rating != nil {
		add("rating", *p.Rating)
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}
	if len(set) > 0 {
		q := `UPDATE movies SET ` + strings.Join(set, ", ") + `, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	// Absent movies surface as ErrMovieNotFound here.
	return r.GetByID(ctx, id)
}

// Deactivate soft-deletes a movie.  Existing sessions keep screening it;
// only the public catalog and new session creation stop seeing it.
func (r *MovieRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE movies SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// could be already inactive; verify existence
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMovieNotFound
			}
			return err
		}
	}
	return nil
}
