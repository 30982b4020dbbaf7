package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mk-yl/convocation-portal/internal/service"
)

// Metrics records every request against its route template. Requests that
// match no route share one label so probing cannot grow the series count.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
