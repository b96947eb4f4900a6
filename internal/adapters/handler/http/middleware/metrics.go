package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/goalmate-engine/internal/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records the request count and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = unmatchedRoute
		}
		metrics.RecordHTTPRequest(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
