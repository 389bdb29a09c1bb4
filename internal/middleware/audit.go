package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/mbu-admin-api/pkg/logger"
)

// Audit writes an admin_audit log entry after every successful admin mutation.
// The request-scoped logger is preferred so entries carry the request id.
func Audit(base *zap.Logger, action, resource string) gin.HandlerFunc {
	if base == nil {
		base = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("resource", resource),
			zap.String("resource_id", c.Param(resourceParam(c))),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
		}
		if claims, ok := CurrentClaims(c); ok {
			fields = append(fields, zap.Int("admin_id", claims.UserID), zap.String("admin_email", claims.Email))
		}
		logger.FromContext(c, base).Info("admin_audit", fields...)
	}
}

func resourceParam(c *gin.Context) string {
	for _, p := range c.Params {
		if p.Key == "id" || p.Key == "name" {
			return p.Key
		}
	}
	return "id"
}
