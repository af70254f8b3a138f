package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bazario/listing-service/internal/platform/logger"
)

// RequestLogger logs one line per request with method, path, status
// and duration.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := c.Writer.Status()
		if status >= 500 {
			log.Error("http request failed",
				"method", c.Request.Method, "path", c.Request.URL.Path,
				"status", status, "duration", duration.String())
			return
		}
		log.Info("http request",
			"method", c.Request.Method, "path", c.Request.URL.Path,
			"status", status, "duration", duration.String())
	}
}
