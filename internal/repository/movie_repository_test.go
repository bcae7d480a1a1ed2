package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var movieCols = []string{"id", "title", "description", "poster_url", "duration_minutes",
	"director", "genre", "release_year", "rating", "is_active", "created_at", "updated_at"}

func movieRow(id uint64, title string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(movieCols).
		AddRow(id, title, "desc", nil, 100, "A. Tarkovsky", "drama", 1979, 8.2, true, now, now)
}

func TestMovieGetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + movieColumns + ` FROM movies WHERE id = ?`)).
		WithArgs(uint64(5)).
		WillReturnRows(movieRow(5, "Stalker"))

	m, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Stalker", m.Title)
	assert.Equal(t, 100*time.Minute, m.Duration())
	assert.Nil(t, m.PosterURL)
	require.NotNil(t, m.Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + movieColumns + ` FROM movies WHERE id = ?`)).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrMovieNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieListActiveWithFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepo(db)
	cond := `is_active = 1 AND title LIKE ? AND genre = ? AND release_year = ?`

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM movies WHERE `+cond)).
		WithArgs("%stalk%", "drama", uint16(1979)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+movieColumns+` FROM movies WHERE `+cond+` ORDER BY created_at DESC LIMIT ? OFFSET ?`)).
		WithArgs("%stalk%", "drama", uint16(1979), 10, 0).
		WillReturnRows(movieRow(5, "Stalker"))

	movies, total, err := repo.ListActive(context.Background(), MovieFilter{Search: "stalk", Genre: "drama", Year: 1979}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, movies, 1)
	assert.Equal(t, "Stalker", movies[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieUpdateAppliesOnlyPatchedFields(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE movies SET title = ?, rating = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)).
		WithArgs("Solaris", 8.1, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + movieColumns + ` FROM movies WHERE id = ?`)).
		WithArgs(uint64(5)).
		WillReturnRows(movieRow(5, "Solaris"))

	title := "Solaris"
	rating := 8.1
	m, err := repo.Update(context.Background(), 5, MoviePatch{Title: &title, Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, "Solaris", m.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieDeactivateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE movies SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM movies WHERE id = ?`)).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	assert.ErrorIs(t, repo.Deactivate(context.Background(), 99), ErrMovieNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
