package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"accountsvc/internal/metrics"
)

// Metrics records request counts and latency per matched route. Unmatched
// requests share one label so arbitrary paths cannot inflate cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
