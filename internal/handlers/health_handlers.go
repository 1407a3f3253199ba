package handlers

import (
	"context"
	"net/http"
	"time"

	"sentinel/internal/caching"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

// Execer is the part of the pool needed to probe the database.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// HealthHandlers handles liveness and readiness probes
type HealthHandlers struct {
	db    Execer
	cache caching.CacheService
}

func NewHealthHandlers(db Execer, cache caching.CacheService) *HealthHandlers {
	return &HealthHandlers{db: db, cache: cache}
}

// ReadinessStatus is the body of the readiness probe.
type ReadinessStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck handles GET /api/health
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessCheck handles GET /api/health/ready
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := &ReadinessStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  map[string]string{"database": "healthy", "redis": "healthy"},
	}
	if err := h.checkDatabase(ctx); err != nil {
		status.Services["database"] = "unhealthy"
		status.Status = "not_ready"
	}
	if err := h.checkRedis(ctx); err != nil {
		status.Services["redis"] = "unhealthy"
		status.Status = "not_ready"
	}

	code := http.StatusOK
	if status.Status != "ready" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}

func (h *HealthHandlers) checkDatabase(ctx context.Context) error {
	_, err := h.db.Exec(ctx, "SELECT 1")
	return err
}

func (h *HealthHandlers) checkRedis(ctx context.Context) error {
	return h.cache.Ping(ctx)
}
