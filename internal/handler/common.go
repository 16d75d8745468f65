package handler // handler translates HTTP requests into service calls

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/apperror"
	"github.com/iliyamo/filmorate/internal/logger"
)

// requestTimeout bounds every store call made on behalf of one request.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// parseID reads a positive unsigned integer path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation(name, "%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   apperror.Code `json:"error"`
	Message string        `json:"message"`
	Field   string        `json:"field,omitempty"`
}

// statusOf maps an error code to its HTTP status.
func statusOf(code apperror.Code) int {
	switch code {
	case apperror.CodeNotFound:
		return http.StatusNotFound
	case apperror.CodeValidation, apperror.CodeInvalidOperation:
		return http.StatusBadRequest
	case apperror.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an errorBody. Internal errors are logged and
// their details are not sent to the client.
func respondError(c echo.Context, err error) error {
	code := apperror.CodeOf(err)
	body := errorBody{Error: code, Message: "internal error"}

	var ae *apperror.AppError
	if code != apperror.CodeInternal && errors.As(err, &ae) {
		body.Message = ae.Message
		body.Field = ae.Field
	}
	if code == apperror.CodeInternal {
		logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	}
	return c.JSON(statusOf(code), body)
}

// bindAndValidate decodes the body into dst and runs the DTO validator.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperror.Wrap(err, apperror.CodeValidation, "malformed request body")
	}
	return c.Validate(dst)
}
