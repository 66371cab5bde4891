package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/qod-service/internal/platform/logging"
)

// operationalPrefix marks health, build and metrics endpoints.
const operationalPrefix = "/-/"

// Logging returns middleware that logs request start and completion with
// the context logger (request_id, correlation_id, trace_id). logger seeds
// the context when no earlier middleware stored one. Operational endpoints
// under /-/ and the exact skipPaths are not logged.
func Logging(logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if _, ok := skip[path]; ok || strings.HasPrefix(path, operationalPrefix) {
			c.Next()
			return
		}

		start := time.Now()

		if c.Request.URL.RawQuery != "" {
			path += "?" + c.Request.URL.RawQuery
		}

		ctx := c.Request.Context()
		if logger != nil && !logging.HasLogger(ctx) {
			ctx = logging.WithContext(ctx, logger)
		}
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
			ctx = logging.With(ctx, slog.String("trace_id", sc.TraceID().String()))
		}
		c.Request = c.Request.WithContext(ctx)

		ctxLogger := logging.FromContext(ctx)

		ctxLogger.Info("request started",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		ctxLogger.Log(ctx, level, "request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int64("latency_ms", latency.Milliseconds()),
			slog.Int("bytes", c.Writer.Size()),
		)
	}
}
