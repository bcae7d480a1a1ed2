// Package handler contains the HTTP handlers. Each handler struct bundles
// the repositories it needs; errors from the repository layer map to HTTP
// statuses in one place (httpError).
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jovid1242/cinema-ticketing/internal/repository"
)

// httpError translates repository sentinels into JSON error responses.
// Not-found checks run before ownership in the repositories, so a caller
// probing foreign ticket ids cannot distinguish "absent" from "not yours"
// by the order of failures.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrMovieNotFound),
		errors.Is(err, repository.ErrHallNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrTicketNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrSeatTaken),
		errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidReference),
		errors.Is(err, repository.ErrMovieInactive),
		errors.Is(err, repository.ErrHallInactive),
		errors.Is(err, repository.ErrSessionInactive),
		errors.Is(err, repository.ErrSessionStarted),
		errors.Is(err, repository.ErrSeatOutOfRange),
		errors.Is(err, repository.ErrHoldExpired),
		errors.Is(err, repository.ErrAlreadyPaid),
		errors.Is(err, repository.ErrAlreadyCancelled):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrTxConflict):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporary conflict, retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

const defaultPerPage = 10

// pagination reads ?page and ?per_page with the catalog defaults.
func pagination(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = defaultPerPage
	}
	return page, perPage
}

// paged is the standard list envelope.
func paged(items any, total int64, page, perPage int) echo.Map {
	return echo.Map{
		"data":     items,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	}
}
