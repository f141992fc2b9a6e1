package middleware

import (
	"strconv"
	"time"

	"main/utils"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request counts, durations and in-flight
// requests. Paths are labeled by route template to keep cardinality down.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		utils.ActiveRequests.Inc()
		defer utils.ActiveRequests.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		utils.HTTPRequestsTotal.WithLabelValues(
			method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		utils.HTTPRequestDuration.WithLabelValues(
			method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
