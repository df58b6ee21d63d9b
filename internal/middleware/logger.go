package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// quietRoutes are polled by infrastructure and logged at debug level
var quietRoutes = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// LoggerMiddleware writes one log line per request, keyed by route pattern so that
// /article/1 and /article/2 group together.
func LoggerMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rawPath := c.Request.URL.Path

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		fields := logrus.Fields{
			"route":      route,
			"path":       rawPath,
			"method":     c.Request.Method,
			"status":     status,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"bytes":      c.Writer.Size(),
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}
		if sessionID, ok := GetSessionID(c); ok {
			fields["session_id"] = sessionID
		}
		if location := c.Writer.Header().Get("Location"); location != "" {
			fields["redirect"] = location
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.ByType(gin.ErrorTypeAny).String()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		case quietRoutes[route]:
			entry.Debug("request served")
		default:
			entry.Info("request served")
		}
	}
}
