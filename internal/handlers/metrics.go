package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hollywoo/internal/metrics"
)

// MetricsHandler serves the Prometheus registry
type MetricsHandler struct {
	gatherer prometheus.Gatherer
}

// NewMetricsHandler creates a handler exposing gatherer
func NewMetricsHandler(gatherer prometheus.Gatherer) *MetricsHandler {
	return &MetricsHandler{gatherer: gatherer}
}

// Metrics returns a Fiber handler for GET /metrics
func (h *MetricsHandler) Metrics() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// RequestMetrics records request counts and durations by route
func RequestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// the matched route is only known after routing
		route := c.Route().Path
		method := c.Method()
		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.RequestDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
