package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/observability"
)

var quietPaths = map[string]bool{
	"/health": true,
	"/info":   true,
}

// RequestLogger logs each request at a level chosen by status and records
// the request in metrics. Health and info probes are skipped.
func RequestLogger(log *logger.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RecordHTTPRequest(c.Request.Context(), c.Request.Method, route, status, latency)
		if quietPaths[c.Request.URL.Path] {
			return
		}

		fields := logger.DurationFields("http", latency)
		fields["method"] = c.Request.Method
		fields["path"] = c.Request.URL.Path
		fields[logger.FieldStatus] = status
		fields["client"] = c.ClientIP()
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.String()
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Error("request completed", fields)
		case status >= 400:
			l.Warn("request completed", fields)
		default:
			l.Debug("request completed", fields)
		}
	}
}
