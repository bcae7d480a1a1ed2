package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jovid1242/cinema-ticketing/internal/repository"
)

// StatsHandler serves the admin overview.
type StatsHandler struct {
	Stats *repository.StatsRepo
}

func NewStatsHandler(s *repository.StatsRepo) *StatsHandler {
	return &StatsHandler{Stats: s}
}

// Overview returns platform counts and paid revenue. Admin only.
func (h *StatsHandler) Overview(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Stats.GetOverview(ctx)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}
