package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID returns the authenticated user id as a string for cache and rate
// limit keying, or "guest" on public routes.
func userID(c echo.Context) string {
	if id, ok := c.Get(ctxUserID).(uint64); ok && id > 0 {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
