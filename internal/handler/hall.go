package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jovid1242/cinema-ticketing/internal/model"
	"github.com/jovid1242/cinema-ticketing/internal/repository"
)

// Hall dimensions are capped so a seat map stays a sane payload.
const (
	minHallDim = 1
	maxHallDim = 50
)

// HallHandler manages halls. All writes are admin only.
type HallHandler struct {
	Halls *repository.HallRepo
}

func NewHallHandler(h *repository.HallRepo) *HallHandler {
	return &HallHandler{Halls: h}
}

type hallReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	SeatRows    uint32  `json:"rows"`
	SeatsPerRow uint32  `json:"seats_per_row"`
}

func dimsValid(rows, seats uint32) bool {
	return rows >= minHallDim && rows <= maxHallDim && seats >= minHallDim && seats <= maxHallDim
}

// Create adds a hall with a fixed seat grid.
func (h *HallHandler) Create(c echo.Context) error {
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if !dimsValid(req.SeatRows, req.SeatsPerRow) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows and seats_per_row must be between 1 and 50"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hall := &model.Hall{
		Name:        req.Name,
		Description: req.Description,
		SeatRows:    req.SeatRows,
		SeatsPerRow: req.SeatsPerRow,
	}
	if err := h.Halls.Create(ctx, hall); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, hall)
}

// List returns active halls, paginated.
func (h *HallHandler) List(c echo.Context) error {
	page, perPage := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	halls, total, err := h.Halls.ListActive(ctx, page, perPage)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, paged(halls, total, page, perPage))
}

// Get returns one hall.
func (h *HallHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hall, err := h.Halls.GetByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, hall)
}

type hallPatchReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SeatRows    *uint32 `json:"rows"`
	SeatsPerRow *uint32 `json:"seats_per_row"`
	IsActive    *bool   `json:"is_active"`
}

// Update patches a hall. Shrinking the grid does not touch sold tickets;
// their coordinates stay valid for history. Deactivation is refused while
// future active sessions are scheduled in the hall.
func (h *HallHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req hallPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
	}
	if req.SeatRows != nil && !dimsValid(*req.SeatRows, minHallDim) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows must be between 1 and 50"})
	}
	if req.SeatsPerRow != nil && !dimsValid(minHallDim, *req.SeatsPerRow) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats_per_row must be between 1 and 50"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hall, err := h.Halls.Update(ctx, id, repository.HallPatch{
		Name:        req.Name,
		Description: req.Description,
		SeatRows:    req.SeatRows,
		SeatsPerRow: req.SeatsPerRow,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, hall)
}

// Delete soft-deletes a hall.
func (h *HallHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Halls.Deactivate(ctx, id); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "hall deactivated"})
}
