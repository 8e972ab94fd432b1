package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tum-registrar/internal/service"
)

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics  *service.MetricsService
	registry *service.RegistryService
	driver   string
}

// NewMetricsHandler constructs a metrics handler. driver names the active state backend.
func NewMetricsHandler(metrics *service.MetricsService, registry *service.RegistryService, driver string) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, registry: registry, driver: driver}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness checks.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports the registry population and state backend.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.registry == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"state":   h.driver,
		"summary": h.registry.Summary(c.Request.Context()),
	})
}
