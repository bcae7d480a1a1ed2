package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jovid1242/cinema-ticketing/internal/model"
	"github.com/jovid1242/cinema-ticketing/internal/repository"
)

// SessionHandler manages screening sessions and the public seat map.
type SessionHandler struct {
	Sessions *repository.SessionRepo
	Tickets  *repository.TicketRepo
}

func NewSessionHandler(s *repository.SessionRepo, t *repository.TicketRepo) *SessionHandler {
	return &SessionHandler{Sessions: s, Tickets: t}
}

type sessionReq struct {
	MovieID    uint64    `json:"movie_id"`
	HallID     uint64    `json:"hall_id"`
	StartTime  time.Time `json:"start_time"`
	PriceCents uint32    `json:"price_cents"`
}

// Create schedules a session. The repository enforces the hall overlap
// rule; a 409 here means the interval collides with another session.
// Admin only.
func (h *SessionHandler) Create(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieID == 0 || req.HallID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id and hall_id are required"})
	}
	if !req.StartTime.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be in the future"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s := &model.Session{
		MovieID:    req.MovieID,
		HallID:     req.HallID,
		StartTime:  req.StartTime.UTC(),
		PriceCents: req.PriceCents,
	}
	if err := h.Sessions.Create(ctx, s); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// List returns active future sessions ordered by start time, with movie
// and hall attached, paginated. Public.
func (h *SessionHandler) List(c echo.Context) error {
	page, perPage := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sessions, total, err := h.Sessions.ListUpcoming(ctx, time.Now().UTC(), page, perPage)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, paged(sessions, total, page, perPage))
}

// Get returns one session with movie, hall and the currently occupied
// seats. Public.
func (h *SessionHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	occupied, err := h.Tickets.OccupiedSeats(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"session": s, "occupied_seats": occupied})
}

// Seats returns the live seat map for a bookable session. Never cached.
// Public, so customers can browse availability before logging in.
func (h *SessionHandler) Seats(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sm, err := h.Tickets.AvailableSeats(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, sm)
}

type sessionPatchReq struct {
	MovieID    *uint64    `json:"movie_id"`
	HallID     *uint64    `json:"hall_id"`
	StartTime  *time.Time `json:"start_time"`
	PriceCents *uint32    `json:"price_cents"`
	IsActive   *bool      `json:"is_active"`
}

// Update patches a not-yet-started session, re-checking the overlap rule.
// Admin only.
func (h *SessionHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req sessionPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StartTime != nil && !req.StartTime.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be in the future"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Sessions.Update(ctx, id, repository.SessionPatch{
		MovieID:    req.MovieID,
		HallID:     req.HallID,
		StartTime:  req.StartTime,
		PriceCents: req.PriceCents,
		IsActive:   req.IsActive,
	})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Delete soft-deletes a session. Refused once tickets are sold or the
// session has started. Admin only.
func (h *SessionHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.Deactivate(ctx, id); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "session deactivated"})
}
