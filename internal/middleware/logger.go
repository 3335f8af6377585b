package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/menahealth/medflow-api/pkg/logger"
)

// Logger logs each request after it completes.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []interface{}{
			"request_id", c.GetString(ContextRequestID),
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if c.Writer.Status() >= 500 {
			var lastErr error
			if last := c.Errors.Last(); last != nil {
				lastErr = last.Err
			}
			log.Error(lastErr, "request failed", fields...)
			return
		}
		log.Info("request completed", fields...)
	}
}
