package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"userdir/pkg/config"
	. "userdir/pkg/tracing"
)

func LoggingMiddleware(logger *config.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		AddHTTPAttributes(trace.SpanFromContext(c.Request.Context()), c.Request.Method, c.FullPath(), c.Writer.Status())

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", GetClientIP(c)),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("trace_id", GetTraceID(c.Request.Context())),
			zap.String("span_id", GetSpanID(c.Request.Context())),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= 500 {
			logger.Ctx(c.Request.Context()).Error("HTTP Request", fields...)
			return
		}

		logger.Ctx(c.Request.Context()).Info("HTTP Request", fields...)
	}
}
