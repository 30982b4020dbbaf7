package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mk-yl/convocation-portal/internal/service"
)

// OpsHandler serves the probe and Prometheus endpoints.
type OpsHandler struct {
	metrics  *service.MetricsService
	upstream string
	cache    *service.CacheService
}

// NewOpsHandler constructs an ops handler. metrics and cache may be nil.
func NewOpsHandler(metrics *service.MetricsService, upstream string, cache *service.CacheService) *OpsHandler {
	return &OpsHandler{metrics: metrics, upstream: upstream, cache: cache}
}

// Prometheus serves the scrape endpoint.
func (h *OpsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health is the liveness probe.
func (h *OpsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the portal can reach a convocation service.
func (h *OpsHandler) Ready(c *gin.Context) {
	if h.upstream == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unconfigured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "ready",
		"upstream":     h.upstream,
		"refdataCache": h.cache.Enabled(),
	})
}
