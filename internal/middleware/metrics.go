package middleware

import (
	"strconv"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latencies per route template, so that
// /api/v1/classrooms/:id is one series regardless of the id.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
