package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/logger"
	"github.com/iliyamo/filmorate/internal/repository"
)

// Health returns a health-check handler for load balancers. When the
// store can be pinged (MySQL), an unreachable database answers 503;
// otherwise it is a plain "ok".
func Health(store repository.Store) echo.HandlerFunc {
	p, canPing := store.(repository.Pinger)
	return func(c echo.Context) error {
		if canPing {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				logger.Warn("health: store ping failed", "error", err)
				return c.String(http.StatusServiceUnavailable, "store unavailable")
			}
		}
		return c.String(http.StatusOK, "ok")
	}
}
