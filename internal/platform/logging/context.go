package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type ctxKey struct{}

// fallback is what FromContext returns for a context without a logger.
var fallback atomic.Pointer[slog.Logger]

// FromContext returns the request-scoped logger, or the process default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := lookup(ctx); ok {
		return logger
	}

	if logger := fallback.Load(); logger != nil {
		return logger
	}

	return slog.Default()
}

// HasLogger reports whether ctx carries a request-scoped logger.
func HasLogger(ctx context.Context) bool {
	_, ok := lookup(ctx)
	return ok
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// With returns ctx carrying FromContext(ctx) enriched with attrs, so later
// log lines for the request include them.
func With(ctx context.Context, attrs ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(attrs...))
}

// SetDefault replaces the fallback logger and slog's default.
func SetDefault(logger *slog.Logger) {
	fallback.Store(logger)
	slog.SetDefault(logger)
}

func lookup(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}

	logger, ok := ctx.Value(ctxKey{}).(*slog.Logger)

	return logger, ok
}
