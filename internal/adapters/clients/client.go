// Package clients is the outbound HTTP layer for upstream services: pooled
// transport, retries with exponential backoff, a circuit breaker and
// OpenTelemetry client spans.
package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jsamuelsen/qod-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/qod-service/internal/platform/config"
	"github.com/jsamuelsen/qod-service/internal/platform/logging"
)

var (
	// ErrCircuitOpen means the breaker refused the call without contacting
	// the upstream.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRetriesExhausted wraps the last failure once every attempt failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

const (
	defaultTimeout      = 10 * time.Second
	defaultJitter       = 0.25
	defaultIdleConns    = 100
	defaultIdlePerHost  = 10
	defaultIdleConnTime = 90 * time.Second
)

// Config configures a Client for one upstream.
type Config struct {
	// BaseURL is prefixed to every request path.
	BaseURL string

	// ServiceName names the upstream in logs, spans and breaker events.
	ServiceName string

	// Timeout bounds a single attempt, not the whole retry sequence.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// OnCircuitChange, when set, observes breaker state changes.
	OnCircuitChange TransitionFunc

	Logger *slog.Logger
}

// Client issues GET requests against one upstream. Network errors, 429 and
// 5xx responses are retried; a whole retry sequence counts once against the
// circuit breaker.
type Client struct {
	http    *http.Client
	baseURL string
	name    string
	retry   config.RetryConfig
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// New validates cfg and builds a Client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.ServiceName == "" {
		return nil, errors.New("clients: service name is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("clients: %s: base url %q must be absolute", cfg.ServiceName, cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("downstream", cfg.ServiceName))

	transport := otelhttp.NewTransport(newTransport(cfg.Transport),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + cfg.ServiceName
		}),
	)

	return &Client{
		http:    &http.Client{Timeout: timeout, Transport: transport},
		baseURL: strings.TrimSuffix(base.String(), "/"),
		name:    cfg.ServiceName,
		retry:   cfg.Retry,
		breaker: newCircuitBreaker(cfg.ServiceName, cfg.Circuit, logger, cfg.OnCircuitChange),
	}, nil
}

// Get requests path under the base URL. Any response that is not retried,
// including 4xx, is returned for the caller to interpret; the caller closes
// its body.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.name),
		slog.String("path", path),
	)
	start := time.Now()

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.getWithRetry(ctx, c.baseURL+path, logger)
	})

	switch {
	case isBreakerRejection(err):
		logger.Warn("request blocked by circuit breaker")
		return nil, ErrCircuitOpen

	case err != nil:
		logger.Error("request failed", slog.Duration("duration", time.Since(start)), slog.Any("error", err))
		return nil, err
	}

	logger.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return resp, nil
}

// CircuitState reports the breaker state.
func (c *Client) CircuitState() State {
	return c.breaker.State()
}

// Name is the configured service name.
func (c *Client) Name() string {
	return c.name
}

func (c *Client) getWithRetry(ctx context.Context, target string, logger *slog.Logger) (*http.Response, error) {
	attempts := 0

	resp, err := backoff.Retry(ctx, func() (*http.Response, error) {
		attempts++
		return c.attempt(ctx, target)
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(max(c.retry.MaxAttempts, 1))), //nolint:gosec // bounded by config validation
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.Debug("retrying request",
				slog.Int("attempt", attempts),
				slog.Duration("backoff", wait),
				slog.Any("error", err),
			)
		}),
	)

	switch {
	case err == nil:
		return resp, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case attempts > 1:
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
	default:
		return nil, err
	}
}

// attempt performs one request. Failures that another attempt cannot fix
// are marked permanent.
func (c *Client) attempt(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	req.Header.Set("Accept", "application/json")
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}
	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if !isRetryable(ctx, err) {
			return nil, backoff.Permanent(err)
		}

		return nil, err
	}

	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < http.StatusInternalServerError {
		return resp, nil
	}

	wait := retryAfter(resp.Header.Get("Retry-After"))
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()

	err = fmt.Errorf("%s responded %d", c.name, resp.StatusCode)
	if wait > 0 {
		return nil, &backoff.RetryAfterError{Duration: wait}
	}

	return nil, err
}

func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()

	if c.retry.InitialInterval > 0 {
		b.InitialInterval = c.retry.InitialInterval
	}
	if c.retry.MaxInterval > 0 {
		b.MaxInterval = c.retry.MaxInterval
	}
	if c.retry.Multiplier > 1 {
		b.Multiplier = c.retry.Multiplier
	}

	b.RandomizationFactor = defaultJitter
	if c.retry.JitterFactor > 0 {
		b.RandomizationFactor = c.retry.JitterFactor
	}

	return b
}

// retryAfter parses a delay-seconds Retry-After header. HTTP dates and
// values above a minute are ignored.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 || secs > 60 {
		return 0
	}

	return time.Duration(secs) * time.Second
}

func newTransport(cfg config.TransportConfig) *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        orDefault(cfg.MaxIdleConns, defaultIdleConns),
		MaxIdleConnsPerHost: orDefault(cfg.MaxIdleConnsPerHost, defaultIdlePerHost),
		IdleConnTimeout:     orDefault(cfg.IdleConnTimeout, defaultIdleConnTime),
		ForceAttemptHTTP2:   true,
	}
}

func orDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}

	return v
}

// isRetryable accepts network-level failures such as per-attempt timeouts
// and refused or reset connections, unless the caller's ctx is done.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
