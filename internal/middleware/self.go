package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// RequireSelf returns a middleware that only lets a request through when
// the path parameter named param equals the authenticated user id. It
// must run after JWTAuth. A mismatch is answered with 403 Forbidden.
func RequireSelf(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := UserIDFromContext(c)
			if !ok {
				return unauthorized(c, "authentication required")
			}
			acting, err := strconv.ParseUint(c.Param(param), 10, 64)
			if err != nil || acting != uid {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":   "FORBIDDEN",
					"message": "token subject does not match the acting user",
				})
			}
			return next(c)
		}
	}
}
