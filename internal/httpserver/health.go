package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/transport"
	"github.com/Skotchmaster/inventory/pkg/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHTTP struct {
	DB  Pinger
	Now func() time.Time
}

func (h *HealthHTTP) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// Health always answers 200 and reports the database state in the body.
func (h *HealthHTTP) Health(c echo.Context) error {
	ctx := c.Request().Context()

	state := "connected"
	if err := h.DB.Ping(ctx); err != nil {
		logging.FromContext(ctx).Warn("health_db_unreachable", "error", err)
		state = "disconnected"
	}

	return c.JSON(http.StatusOK, transport.HealthResponse{
		Success:   true,
		Message:   "inventory API is running",
		Database:  state,
		Timestamp: h.now(),
	})
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *HealthHTTP) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.DB.Ping(ctx); err != nil {
		logging.FromContext(ctx).Error("readiness_failed", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.NoContent(http.StatusOK)
}
