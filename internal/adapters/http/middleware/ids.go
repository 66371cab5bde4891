// Package middleware holds the gin middleware installed by the router.
package middleware

import (
	"context"
	"log/slog"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/qod-service/internal/platform/logging"
)

const (
	// HeaderRequestID identifies one inbound request.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID identifies a business transaction that may span
	// several services.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin.Context key holding the request ID.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin.Context key holding the correlation ID.
	ContextKeyCorrelationID = "correlation_id"

	// maxIDLength bounds caller-supplied IDs. Longer values are replaced.
	maxIDLength = 128
)

type idKey int

const (
	requestIDKey idKey = iota
	correlationIDKey
)

// idSpec describes one propagated identifier.
type idSpec struct {
	header string
	ginKey string
	ctxKey idKey
}

var (
	requestIDSpec     = idSpec{HeaderRequestID, ContextKeyRequestID, requestIDKey}
	correlationIDSpec = idSpec{HeaderCorrelationID, ContextKeyCorrelationID, correlationIDKey}
)

// RequestID accepts X-Request-ID from the caller or mints a UUID, echoes it
// on the response and makes it available to handlers, the request logger
// and outbound quote-service calls.
func RequestID() gin.HandlerFunc {
	return requestIDSpec.middleware()
}

// CorrelationID does for X-Correlation-ID what RequestID does for X-Request-ID.
func CorrelationID() gin.HandlerFunc {
	return correlationIDSpec.middleware()
}

// RequestIDFromContext returns the request ID stored by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return requestIDSpec.from(ctx)
}

// CorrelationIDFromContext returns the correlation ID stored by CorrelationID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return correlationIDSpec.from(ctx)
}

func (s idSpec) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(s.header)
		if !validID(id) {
			id = uuid.NewString()
		}

		c.Set(s.ginKey, id)
		c.Header(s.header, id)

		ctx := context.WithValue(c.Request.Context(), s.ctxKey, id)
		c.Request = c.Request.WithContext(logging.With(ctx, slog.String(s.ginKey, id)))

		c.Next()
	}
}

func (s idSpec) from(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(s.ctxKey).(string)

	return id
}

// validID accepts non-empty printable ASCII up to maxIDLength bytes.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return false
		}
	}

	return true
}
