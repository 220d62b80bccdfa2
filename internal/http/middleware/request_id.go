package middleware

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	RequestIDHeader     = echo.HeaderXRequestID
	RequestIDContextKey = "request_id"
)

// Client-supplied IDs end up in audit lines, so only short opaque tokens are
// accepted.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

func requestIDFor(c echo.Context) string {
	if id := c.Request().Header.Get(RequestIDHeader); requestIDPattern.MatchString(id) {
		return id
	}
	return uuid.NewString()
}

// RequestID tags every request with an ID, echoed in the response header and
// stored on the context for handlers, audit and error responses.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := requestIDFor(c)
			c.Set(RequestIDContextKey, id)
			c.Response().Header().Set(RequestIDHeader, id)
			return next(c)
		}
	}
}

// GetRequestID returns the ID stored by RequestID, or "".
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(RequestIDContextKey).(string)
	return id
}
