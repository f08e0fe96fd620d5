package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearning-analytics-console/internal/service"
	"github.com/noah-isme/elearning-analytics-console/pkg/export"
)

type exportStates interface {
	States() map[string]export.State
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	exports exportStates
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, exports exportStates) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, exports: exports}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 while any export serializer is still loading.
func (h *MetricsHandler) Ready(c *gin.Context) {
	states := map[string]export.State{}
	if h.exports != nil {
		states = h.exports.States()
	}
	status := http.StatusOK
	for _, state := range states {
		if state == export.StateLoading {
			status = http.StatusServiceUnavailable
			break
		}
	}
	label := "ready"
	if status != http.StatusOK {
		label = "loading"
	}
	c.JSON(status, gin.H{"status": label, "exports": states})
}
