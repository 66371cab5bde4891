package clients

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/qod-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/qod-service/internal/platform/config"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:     baseURL,
		ServiceName: "quote-service",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 5 * time.Millisecond,
			MaxInterval:     20 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{MaxFailures: 5, Timeout: time.Minute, HalfOpenLimit: 1},
	}
}

// upstream serves statuses in order, repeating the last one.
func upstream(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1)) - 1
		w.WriteHeader(statuses[min(n, len(statuses)-1)])
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()

	c, err := New(cfg)
	require.NoError(t, err)

	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "nil config", cfg: nil},
		{name: "no service name", cfg: &Config{BaseURL: "http://quotes.local"}},
		{name: "relative base url", cfg: &Config{ServiceName: "q", BaseURL: "/api"}},
		{name: "unparsable base url", cfg: &Config{ServiceName: "q", BaseURL: "http://[::1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)

			require.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c := newTestClient(t, &Config{ServiceName: "quote-service", BaseURL: "https://api.quotable.io/"})

	assert.Equal(t, "quote-service", c.Name())
	assert.Equal(t, "https://api.quotable.io", c.baseURL)
	assert.Equal(t, defaultTimeout, c.http.Timeout)
	assert.Equal(t, StateClosed, c.CircuitState())
}

func TestClient_Get(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, testConfig(srv.URL))

	resp, err := c.Get(context.Background(), "random")
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/random", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestClient_PropagatesIDs(t *testing.T) {
	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, testConfig(srv.URL))

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.CorrelationID())
	engine.POST("/quotes/import", func(gc *gin.Context) {
		if resp, err := c.Get(gc.Request.Context(), "/random"); err == nil {
			_ = resp.Body.Close()
		}
		gc.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/quotes/import", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-42")
	req.Header.Set(middleware.HeaderCorrelationID, "corr-7")
	engine.ServeHTTP(httptest.NewRecorder(), req)

	h := <-headers
	assert.Equal(t, "req-42", h.Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-7", h.Get(middleware.HeaderCorrelationID))
}

func TestClient_Retries(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantCode  int
		wantErr   error
	}{
		{name: "recovers after 503", statuses: []int{503, 200}, wantCalls: 2, wantCode: 200},
		{name: "recovers after 429", statuses: []int{429, 429, 200}, wantCalls: 3, wantCode: 200},
		{name: "4xx is returned as is", statuses: []int{404}, wantCalls: 1, wantCode: 404},
		{name: "gives up after max attempts", statuses: []int{500}, wantCalls: 3, wantErr: ErrRetriesExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := upstream(t, tt.statuses...)

			resp, err := newTestClient(t, testConfig(srv.URL)).Get(context.Background(), "/random")

			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}

func TestClient_HonoursRetryAfter(t *testing.T) {
	arrivals := make(chan time.Time, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		arrivals <- time.Now()
		if len(arrivals) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	t.Cleanup(srv.Close)

	resp, err := newTestClient(t, testConfig(srv.URL)).Get(context.Background(), "/random")
	require.NoError(t, err)
	_ = resp.Body.Close()

	first, second := <-arrivals, <-arrivals
	assert.GreaterOrEqual(t, second.Sub(first), 900*time.Millisecond)
}

func TestClient_CircuitOpens(t *testing.T) {
	srv, calls := upstream(t, http.StatusBadGateway)

	cfg := testConfig(srv.URL)
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 2

	var mu sync.Mutex
	var transitions []string
	cfg.OnCircuitChange = func(service string, from, to State) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, service+":"+from.String()+"->"+to.String())
	}

	c := newTestClient(t, cfg)

	for range 2 {
		_, err := c.Get(context.Background(), "/random")
		require.Error(t, err)
	}

	_, err := c.Get(context.Background(), "/random")

	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, StateOpen, c.CircuitState())
	assert.Equal(t, []string{"quote-service:closed->open"}, transitions)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv, calls := upstream(t, http.StatusServiceUnavailable)

	cfg := testConfig(srv.URL)
	cfg.Retry.InitialInterval = time.Second
	cfg.Retry.MaxInterval = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, cfg).Get(ctx, "/random")

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_PerAttemptTimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond

	resp, err := newTestClient(t, cfg).Get(context.Background(), "/random")
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, int32(2), calls.Load())
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsRetryable(t *testing.T) {
	live := context.Background()
	done, cancel := context.WithCancel(context.Background())
	cancel()

	refused := &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}

	assert.True(t, isRetryable(live, refused))
	assert.True(t, isRetryable(live, timeoutErr{}))
	assert.False(t, isRetryable(live, errors.New("tls: bad certificate")))
	assert.False(t, isRetryable(done, refused))
}

func TestRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"2":                             2 * time.Second,
		" 5 ":                           5 * time.Second,
		"0":                             0,
		"-3":                            0,
		"120":                           0,
		"Wed, 21 Oct 2015 07:28:00 GMT": 0,
		"":                              0,
	}

	for in, want := range tests {
		assert.Equal(t, want, retryAfter(in), "Retry-After %q", in)
	}
}

func TestNewTransport(t *testing.T) {
	defaults := newTransport(config.TransportConfig{})
	assert.Equal(t, defaultIdleConns, defaults.MaxIdleConns)
	assert.Equal(t, defaultIdlePerHost, defaults.MaxIdleConnsPerHost)
	assert.Equal(t, defaultIdleConnTime, defaults.IdleConnTimeout)

	custom := newTransport(config.TransportConfig{MaxIdleConns: 7, MaxIdleConnsPerHost: 3, IdleConnTimeout: time.Second})
	assert.Equal(t, 7, custom.MaxIdleConns)
	assert.Equal(t, 3, custom.MaxIdleConnsPerHost)
	assert.Equal(t, time.Second, custom.IdleConnTimeout)
}
