package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/localbookr/marketplace-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every completed request with its latency, caller and device
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		client := utils.ParseUserAgent(c.Request.UserAgent())
		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         utils.GetRealIP(c),
			"latency_ms": time.Since(start).Milliseconds(),
			"device":     client.DeviceType,
			"os":         client.OS,
			"browser":    client.Browser,
		}
		if client.IsBot {
			fields["bot"] = true
		}
		if userCtx, ok := GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}
