package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovid1242/cinema-ticketing/internal/repository"
)

func TestHTTPErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{repository.ErrTicketNotFound, http.StatusNotFound},
		{repository.ErrSessionNotFound, http.StatusNotFound},
		{repository.ErrForbidden, http.StatusForbidden},
		{repository.ErrSeatTaken, http.StatusConflict},
		{repository.ErrConflict, http.StatusConflict},
		{repository.ErrEmailExists, http.StatusConflict},
		{repository.ErrInvalidReference, http.StatusUnprocessableEntity},
		{repository.ErrHoldExpired, http.StatusUnprocessableEntity},
		{repository.ErrAlreadyPaid, http.StatusUnprocessableEntity},
		{repository.ErrSessionStarted, http.StatusUnprocessableEntity},
		{repository.ErrSeatOutOfRange, http.StatusUnprocessableEntity},
		{repository.ErrTxConflict, http.StatusServiceUnavailable},
		{errors.New("some driver error"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			require.NoError(t, httpError(c, tc.err))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestPagination(t *testing.T) {
	e := echo.New()
	cases := []struct {
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"", 1, 10},
		{"page=3&per_page=25", 3, 25},
		{"page=-1&per_page=1000", 1, 10},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		page, perPage := pagination(c)
		assert.Equal(t, tc.wantPage, page, tc.query)
		assert.Equal(t, tc.wantPerPage, perPage, tc.query)
	}
}
