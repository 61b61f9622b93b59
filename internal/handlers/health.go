package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"hollywoo/internal/database"
)

// degradedAfter is the ping latency above which the database is reported degraded
const degradedAfter = 200 * time.Millisecond

// HealthStatus is the /healthz response
type HealthStatus struct {
	Status string                 `json:"status"`
	DB     DependencyHealthStatus `json:"db"`
	Videos int64                  `json:"videos"`
}

// DependencyHealthStatus is the health of one dependency
type DependencyHealthStatus struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Message   string `json:"message,omitempty"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db *database.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck handles GET /healthz
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := HealthStatus{DB: h.checkDB(ctx)}
	status.Status = status.DB.Status

	if status.DB.Status != "error" {
		count, err := h.db.Store().VideoCount(ctx)
		if err != nil {
			status.Status = "error"
			status.DB.Message = err.Error()
		}
		status.Videos = count
	}

	httpStatus := http.StatusOK
	if status.Status != "ok" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.Set("Cache-Control", "no-store")
	return c.Status(httpStatus).JSON(status)
}

func (h *HealthHandler) checkDB(ctx context.Context) DependencyHealthStatus {
	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start)

	switch {
	case err != nil:
		return DependencyHealthStatus{Status: "error", LatencyMs: latency.Milliseconds(), Message: err.Error()}
	case latency > degradedAfter:
		return DependencyHealthStatus{Status: "degraded", LatencyMs: latency.Milliseconds(), Message: "Database response time is above threshold"}
	default:
		return DependencyHealthStatus{Status: "ok", LatencyMs: latency.Milliseconds()}
	}
}
