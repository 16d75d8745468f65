package middleware

// identity.go holds the context keys shared by the middleware in this
// package and the handlers that read them.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth and RequestID.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
)

// UserIDFromContext returns the authenticated user id stored by JWTAuth.
func UserIDFromContext(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ContextKeyUserID).(uint64)
	return id, ok && id != 0
}

// RequestIDFromContext returns the id stored by RequestID, or "".
func RequestIDFromContext(c echo.Context) string {
	s, _ := c.Get(ContextKeyRequestID).(string)
	return s
}

// rateUser is the user part of a rate-limit key; "anon" when the request
// carries no verified identity.
func rateUser(c echo.Context) string {
	if id, ok := UserIDFromContext(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
