package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tissage-sgq/shiftconsole/internal/platform/ctxutil"
	"github.com/tissage-sgq/shiftconsole/internal/platform/logger"
)

// RequestLogger logs one line per request. Probes log at debug level; 4xx at
// warn and 5xx at error.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if strings.HasPrefix(route, "/api/consoles/:id") {
			fields = append(fields, "console_id", c.Param("id"))
		}
		if strings.HasSuffix(route, "/stream") {
			fields = append(fields, "stream", true)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case route == "/healthcheck" || route == "/metrics":
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
