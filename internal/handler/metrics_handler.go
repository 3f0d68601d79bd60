package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-lms-api/internal/service"
)

const healthTimeout = 2 * time.Second

// Pinger is a dependency the health endpoint can check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthCheck struct {
	name     string
	target   Pinger
	critical bool
}

// MetricsHandler serves /metrics and /health.
type MetricsHandler struct {
	metrics *service.MetricsService
	checks  []healthCheck
}

// NewMetricsHandler constructs the handler. A non-nil db becomes the
// critical "database" check.
func NewMetricsHandler(metrics *service.MetricsService, db Pinger) *MetricsHandler {
	h := &MetricsHandler{metrics: metrics}
	if db != nil {
		h.checks = append(h.checks, healthCheck{name: "database", target: db, critical: true})
	}
	return h
}

// WithOptionalCheck adds a dependency that is reported but never fails the health check.
func (h *MetricsHandler) WithOptionalCheck(name string, target Pinger) *MetricsHandler {
	if target != nil {
		h.checks = append(h.checks, healthCheck{name: name, target: target})
	}
	return h
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health probes every registered dependency in parallel. Any critical
// failure turns the response into 503 "degraded".
func (h *MetricsHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	results := make([]error, len(h.checks))
	var wg sync.WaitGroup
	for i, check := range h.checks {
		wg.Add(1)
		go func(i int, target Pinger) {
			defer wg.Done()
			results[i] = target.PingContext(ctx)
		}(i, check.target)
	}
	wg.Wait()

	status, code := "ok", http.StatusOK
	report := make(map[string]string, len(h.checks))
	for i, check := range h.checks {
		if results[i] == nil {
			report[check.name] = "ok"
			continue
		}
		report[check.name] = "unreachable"
		if check.critical {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	body := gin.H{"status": status}
	if len(report) > 0 {
		body["checks"] = report
	}
	c.JSON(code, body)
}
