package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tissage-sgq/shiftconsole/internal/observability"
)

// Metrics records request counts and latency per route pattern. SSE streams
// and the scrape endpoint are left out: a stream lasts as long as the view is
// open and would swamp the latency buckets.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if skipMetrics(route) {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func skipMetrics(route string) bool {
	return route == "/metrics" || strings.HasSuffix(route, "/stream")
}
