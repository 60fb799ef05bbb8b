package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports process and dependency health for probes.
type HealthHandler struct {
	DB    *sql.DB
	Redis *redis.Client
	Start time.Time
}

func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, Redis: rdb, Start: time.Now()}
}

// Health pings the database and reports overall status. Redis is
// reported but optional: a down cache degrades, it does not fail the
// check.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	dbStatus := "up"
	status := http.StatusOK
	if err := h.DB.PingContext(ctx); err != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	redisStatus := "disabled"
	if h.Redis != nil {
		redisStatus = "up"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}
	}

	healthy := status == http.StatusOK
	return c.JSON(status, Envelope{
		Success: healthy,
		Data: echo.Map{
			"status":   map[bool]string{true: "healthy", false: "unhealthy"}[healthy],
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(h.Start).Round(time.Second).String(),
		},
		Timestamp: now(),
	})
}

// Live always succeeds while the process can serve requests.
func (h *HealthHandler) Live(c echo.Context) error {
	return OK(c, 200, echo.Map{"status": "alive"})
}

// Ready mirrors Health for readiness gating.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, Envelope{
			Success:   false,
			Error:     &ErrorBody{Code: CodeInternal, Message: "database unavailable"},
			Timestamp: now(),
		})
	}
	return OK(c, 200, echo.Map{"status": "ready"})
}
