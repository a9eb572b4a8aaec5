package middleware

import (
	"log/slog"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/hostel-api/pkg/logger"
)

const healthPath = "/api/v1/health"

// RequestLogger logs incoming HTTP requests using slog
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		// Health probes are too frequent to log
		if path == healthPath {
			return
		}

		if query := redactQuery(c.Request.URL.Query()); query != "" {
			path = path + "?" + query
		}

		statusCode := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", statusCode),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Request.UserAgent()),
		}

		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			attrs = append(attrs, slog.String("error", errorMessage))
		}

		if userID := GetUserID(c); userID != nil {
			attrs = append(attrs, slog.String("user_id", userID.String()))
		}

		msg := "Incoming request"
		switch {
		case statusCode >= 500:
			logger.Log.Error(msg, attrs...)
		case statusCode >= 400:
			logger.Log.Warn(msg, attrs...)
		default:
			logger.Log.Info(msg, attrs...)
		}
	}
}

// redactQuery hides bearer tokens passed on download links
func redactQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	if values.Has("token") {
		values.Set("token", "REDACTED")
	}
	return values.Encode()
}
