package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/qod-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/qod-service/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())

	return resp.Error.Code
}

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
		wantLog   bool
	}{
		{name: "success at info", path: "/quotes?x=1", status: http.StatusOK, wantLevel: "INFO", wantLog: true},
		{name: "client error at warn", path: "/quotes/search?q=ab", status: http.StatusBadRequest, wantLevel: "WARN", wantLog: true},
		{name: "server error at error", path: "/quotes/random", status: http.StatusInternalServerError, wantLevel: "ERROR", wantLog: true},
		{name: "operational path skipped", path: "/-/live", status: http.StatusOK, wantLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, buf := bufferLogger()

			router := gin.New()
			router.Use(Logging(logger))
			router.Any("/*path", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)

			if !tt.wantLog {
				assert.Empty(t, buf.String())
				return
			}

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.Len(t, lines, 2)
			assert.Contains(t, lines[0], `"msg":"request started"`)
			assert.Contains(t, lines[0], tt.path)
			assert.Contains(t, lines[1], `"level":"`+tt.wantLevel+`"`)
			assert.Contains(t, lines[1], `"route":"/*path"`)
		})
	}
}

func TestLogging_UsesRequestScopedLogger(t *testing.T) {
	t.Parallel()

	logger, buf := bufferLogger()

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		c.Next()
	})
	router.Use(RequestID(), CorrelationID(), Logging(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.GET("/quotes", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	req.Header.Set(HeaderCorrelationID, "corr-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"correlation_id":"corr-7"`)
}

func TestLogging_SkipPaths(t *testing.T) {
	t.Parallel()

	logger, buf := bufferLogger()

	router := gin.New()
	router.Use(Logging(logger, "/favicon.ico"))
	router.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/sources", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Empty(t, buf.String())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sources", nil))
	assert.Contains(t, buf.String(), "request completed")
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	t.Run("passes through", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery(slog.New(slog.NewTextHandler(io.Discard, nil))))
		router.GET("/quotes", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("panic becomes internal error", func(t *testing.T) {
		t.Parallel()

		logger, buf := bufferLogger()

		router := gin.New()
		router.Use(Recovery(logger))
		router.GET("/quotes/:id", func(c *gin.Context) { panic("nil source") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes/1", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrorCodeInternal, errorCode(t, w))
		assert.NotContains(t, w.Body.String(), "nil source")
		assert.Contains(t, buf.String(), `"panic":"nil source"`)
		assert.Contains(t, buf.String(), `"route":"/quotes/:id"`)
	})

	t.Run("hooks see the panic", func(t *testing.T) {
		t.Parallel()

		var got any
		var stack []byte

		router := gin.New()
		router.Use(Recovery(slog.New(slog.NewTextHandler(io.Discard, nil)), func(r any, s []byte) {
			got, stack = r, s
		}))
		router.GET("/sources", func(c *gin.Context) { panic("boom") })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sources", nil))

		assert.Equal(t, "boom", got)
		assert.Contains(t, string(stack), "panic")
	})

	t.Run("response already started", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery(slog.New(slog.NewTextHandler(io.Discard, nil))))
		router.GET("/quotes", func(c *gin.Context) {
			c.String(http.StatusOK, "partial")
			panic("late")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "partial", w.Body.String())
	})
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("sets a deadline", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool

		router := gin.New()
		router.Use(Timeout(5 * time.Second))
		router.GET("/quotes", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, hasDeadline)
	})

	t.Run("silent handler after deadline gets 503", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set("trace_id", "trace-timeout")
			c.Next()
		})
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/quotes/qod", func(c *gin.Context) {
			<-c.Request.Context().Done()
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes/qod", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrorCodeTimeout, errorCode(t, w))
		assert.Contains(t, w.Body.String(), `"traceId":"trace-timeout"`)
	})

	t.Run("handler error wins", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/quotes", func(c *gin.Context) {
			<-c.Request.Context().Done()
			dto.HandleError(c, c.Request.Context().Err())
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrorCodeTimeout, errorCode(t, w))
	})

	t.Run("skip paths have no deadline", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool

		router := gin.New()
		router.Use(Timeout(time.Second, "/quotes/import"))
		router.POST("/quotes/import", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusCreated)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/quotes/import", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.False(t, hasDeadline)
	})

	t.Run("zero disables", func(t *testing.T) {
		t.Parallel()

		var ctx context.Context

		router := gin.New()
		router.Use(Timeout(0))
		router.GET("/sources", func(c *gin.Context) {
			ctx = c.Request.Context()
			c.Status(http.StatusOK)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sources", nil))

		_, ok := ctx.Deadline()
		assert.False(t, ok)
	})
}
