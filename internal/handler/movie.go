package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jovid1242/cinema-ticketing/internal/model"
	"github.com/jovid1242/cinema-ticketing/internal/repository"
)

// MovieHandler serves the movie catalog: public listing and admin CRUD.
type MovieHandler struct {
	Movies   *repository.MovieRepo
	Sessions *repository.SessionRepo
}

func NewMovieHandler(m *repository.MovieRepo, s *repository.SessionRepo) *MovieHandler {
	return &MovieHandler{Movies: m, Sessions: s}
}

type movieReq struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	PosterURL       *string  `json:"poster_url"`
	DurationMinutes uint32   `json:"duration_minutes"`
	Director        string   `json:"director"`
	Genre           string   `json:"genre"`
	ReleaseYear     uint16   `json:"release_year"`
	Rating          *float64 `json:"rating"`
}

func (r movieReq) validate() string {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return "title is required"
	case r.DurationMinutes < 1:
		return "duration_minutes must be positive"
	case r.ReleaseYear < 1900 || int(r.ReleaseYear) > time.Now().Year()+5:
		return "release_year is invalid"
	case r.Rating != nil && (*r.Rating < 0 || *r.Rating > 10):
		return "rating must be between 0 and 10"
	}
	return ""
}

// Create adds a movie to the catalog. Admin only.
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := &model.Movie{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		PosterURL:       req.PosterURL,
		DurationMinutes: req.DurationMinutes,
		Director:        req.Director,
		Genre:           req.Genre,
		ReleaseYear:     req.ReleaseYear,
		Rating:          req.Rating,
	}
	if err := h.Movies.Create(ctx, m); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// List returns active movies with optional ?search, ?genre and ?year
// filters, newest first, paginated. Public.
func (h *MovieHandler) List(c echo.Context) error {
	page, perPage := pagination(c)
	year, _ := strconv.ParseUint(c.QueryParam("year"), 10, 16)
	filter := repository.MovieFilter{
		Search: c.QueryParam("search"),
		Genre:  c.QueryParam("genre"),
		Year:   uint16(year),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, total, err := h.Movies.ListActive(ctx, filter, page, perPage)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, paged(movies, total, page, perPage))
}

// Get returns one movie together with its upcoming sessions. Public.
func (h *MovieHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	sessions, err := h.Sessions.ListUpcomingByMovie(ctx, id, time.Now().UTC())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"movie": m, "sessions": sessions})
}

type moviePatchReq struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	PosterURL       *string  `json:"poster_url"`
	DurationMinutes *uint32  `json:"duration_minutes"`
	Director        *string  `json:"director"`
	Genre           *string  `json:"genre"`
	ReleaseYear     *uint16  `json:"release_year"`
	Rating          *float64 `json:"rating"`
	IsActive        *bool    `json:"is_active"`
}

// Update patches a movie. Admin only.
func (h *MovieHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req moviePatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title cannot be empty"})
	}
	if req.DurationMinutes != nil && *req.DurationMinutes < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_minutes must be positive"})
	}
	if req.ReleaseYear != nil && (*req.ReleaseYear < 1900 || int(*req.ReleaseYear) > time.Now().Year()+5) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "release_year is invalid"})
	}
	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 10) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 0 and 10"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.Update(ctx, id, repository.MoviePatch{
		Title:           req.Title,
		Description:     req.Description,
		PosterURL:       req.PosterURL,
		DurationMinutes: req.DurationMinutes,
		Director:        req.Director,
		Genre:           req.Genre,
		ReleaseYear:     req.ReleaseYear,
		Rating:          req.Rating,
		IsActive:        req.IsActive,
	})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Delete soft-deletes a movie. Existing sessions keep running; the movie
// just leaves the catalog and cannot be scheduled again. Admin only.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Movies.Deactivate(ctx, id); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie deactivated"})
}
