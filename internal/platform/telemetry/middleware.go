package telemetry

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/jsamuelsen/qod-service/telemetry"

	// HeaderTraceID carries the active trace ID back to the caller.
	HeaderTraceID = "X-Trace-ID"

	// ContextKeyTraceID is the gin.Context key holding the active trace ID.
	ContextKeyTraceID = "trace_id"

	unmatchedRoute = "unmatched"
)

// serverMetrics are the HTTP server instruments, labelled by method and
// route template so /quotes/:id stays one series.
type serverMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	active   metric.Int64UpDownCounter
}

func newServerMetrics(meter metric.Meter) (*serverMetrics, error) {
	var (
		m   serverMetrics
		err error
	)

	if m.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.total, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("HTTP requests served")); err != nil {
		return nil, err
	}
	if m.active, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("HTTP requests in flight")); err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *serverMetrics) begin(ctx context.Context, method, route string) func(status int) {
	start := time.Now()
	inFlight := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
	)
	m.active.Add(ctx, 1, inFlight)

	return func(status int) {
		m.active.Add(ctx, -1, inFlight)

		done := metric.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		m.duration.Record(ctx, time.Since(start).Seconds(), done)
		m.total.Add(ctx, 1, done)
	}
}

// Middleware opens the server span with otelgin, then exposes its trace
// ID as ContextKeyTraceID and the X-Trace-ID header and records request
// metrics on the global meter provider.
func Middleware(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		requestMetrics(),
	}
}

func requestMetrics() gin.HandlerFunc {
	m, err := newServerMetrics(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			id := sc.TraceID().String()
			c.Set(ContextKeyTraceID, id)
			c.Header(HeaderTraceID, id)
		}

		if m == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		end := m.begin(c.Request.Context(), c.Request.Method, route)
		c.Next()
		end(c.Writer.Status())
	}
}
