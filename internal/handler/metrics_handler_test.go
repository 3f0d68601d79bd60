package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-lms-api/internal/service"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func runHealth(t *testing.T, h *MetricsHandler) (int, healthBody) {
	t.Helper()
	c, w := newGinContext(http.MethodGet, "/health", nil)
	h.Health(c)
	var body healthBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestMetricsHandlerHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	code, body := runHealth(t, NewMetricsHandler(nil, nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Empty(t, body.Checks)

	code, body = runHealth(t, NewMetricsHandler(nil, stubPinger{}))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]string{"database": "ok"}, body.Checks)

	code, body = runHealth(t, NewMetricsHandler(nil, stubPinger{err: errors.New("dial tcp: refused")}))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body.Status)
}

func TestMetricsHandlerOptionalCheckDoesNotDegrade(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, stubPinger{}).
		WithOptionalCheck("cache", stubPinger{err: errors.New("connection reset")}).
		WithOptionalCheck("skipped", nil)

	code, body := runHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]string{"database": "ok", "cache": "unreachable"}, body.Checks)
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newGinContext(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(nil, nil).Prometheus(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	metrics := service.NewMetricsService()
	metrics.RecordWebhookPost("mentor_requests", nil)
	c, w = newGinContext(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(metrics, nil).Prometheus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `campus_lms_webhook_posts_total{outcome="ok",source="mentor_requests"} 1`)
}
