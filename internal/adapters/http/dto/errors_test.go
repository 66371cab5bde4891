package dto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/qod-service/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)

	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestErrorResponse_WithTraceID(t *testing.T) {
	resp := NewErrorResponseWithDetails(ErrorCodeValidation, "bad", map[string]string{"text": "is required"})

	got := resp.WithTraceID("abc")

	assert.Same(t, resp, got)
	assert.Equal(t, "abc", got.TraceID)
	assert.Equal(t, "is required", got.Error.Details["text"])
}

func TestErrorResponse_OmitsEmptyFields(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponse(ErrorCodeNotFound, "quote not found"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"quote not found"}}`, string(raw))
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := map[string]int{
		ErrorCodeNotFound:             http.StatusNotFound,
		ErrorCodeValidation:           http.StatusBadRequest,
		ErrorCodeBadRequest:           http.StatusBadRequest,
		ErrorCodeUnsupportedMediaType: http.StatusUnsupportedMediaType,
		ErrorCodeUnavailable:          http.StatusServiceUnavailable,
		ErrorCodeTimeout:              http.StatusServiceUnavailable,
		ErrorCodeInternal:             http.StatusInternalServerError,
		"SOMETHING_ELSE":              http.StatusInternalServerError,
	}

	for code, want := range tests {
		t.Run(code, func(t *testing.T) {
			assert.Equal(t, want, HTTPStatusFromCode(code))
		})
	}
}

// TestMapDomainError covers the domain error kinds that reach handlers.
func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails map[string]string
	}{
		{
			name:       "missing quote",
			err:        domain.NewNotFoundError("quote", "123"),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrorCodeNotFound,
		},
		{
			name:       "empty collection is not found",
			err:        domain.NewEmptyCollectionError("quotes"),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrorCodeNotFound,
		},
		{
			name:       "search term too short is a validation error",
			err:        domain.NewSearchTermTooShortError("ab", 3),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCodeValidation,
		},
		{
			name:        "field validation carries details",
			err:         domain.NewValidationError("date", "must be YYYY-MM-DD"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantDetails: map[string]string{"date": "must be YYYY-MM-DD"},
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("loading quote: %w", domain.NewNotFoundError("quote", "x")),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrorCodeNotFound,
		},
		{
			name:        "upstream unavailable",
			err:         domain.NewUnavailableError("quote-service", "circuit open"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: unavailableErrorMessage,
		},
		{
			name:        "deadline exceeded",
			err:         fmt.Errorf("listing quotes: %w", context.DeadlineExceeded),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeTimeout,
			wantMessage: "request timeout exceeded",
		},
		{
			name:        "anything else is internal",
			err:         errors.New("pq: relation \"quotes\" does not exist"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: internalErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
		})
	}
}

func TestGetTraceID(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*gin.Context)
		want  string
	}{
		{
			name:  "otel trace id",
			setup: func(c *gin.Context) { c.Set("trace_id", "4bf92f3577b34da6a3ce929d0e0e4736") },
			want:  "4bf92f3577b34da6a3ce929d0e0e4736",
		},
		{
			name:  "falls back to request id header",
			setup: func(c *gin.Context) { c.Request.Header.Set("X-Request-ID", "req-7") },
			want:  "req-7",
		},
		{
			name: "context wins over header",
			setup: func(c *gin.Context) {
				c.Set("trace_id", "from-span")
				c.Request.Header.Set("X-Request-ID", "req-7")
			},
			want: "from-span",
		},
		{
			name:  "non-string value",
			setup: func(c *gin.Context) { c.Set("trace_id", 42) },
			want:  "",
		},
		{
			name:  "nothing set",
			setup: func(*gin.Context) {},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/quotes")
			tt.setup(c)

			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}
}

func TestHandleError(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/quotes/qod")
	c.Set("trace_id", "trace-1")

	HandleError(c, domain.NewEmptyCollectionError("quotes"))

	assert.Equal(t, http.StatusNotFound, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, ErrorCodeNotFound, resp.Error.Code)
	assert.Equal(t, "trace-1", resp.TraceID)
}

func TestHandleError_InternalHidesCause(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/quotes")

	HandleError(c, errors.New("sql: database is closed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "database is closed")
}

func TestHandleError_UnavailableHidesUpstreamDetail(t *testing.T) {
	c, w := newTestContext(http.MethodPost, "/quotes/import")

	HandleError(c, domain.NewUnavailableError("quote-service", "dial tcp 10.0.0.7:443: connection refused"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.7")
}

func TestRespondWithCode(t *testing.T) {
	c, w := newTestContext(http.MethodPut, "/quotes/x/text")
	c.Request.Header.Set("X-Request-ID", "req-1")

	RespondWithCode(c, ErrorCodeUnsupportedMediaType, "expected text/plain")

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, ErrorCodeUnsupportedMediaType, resp.Error.Code)
	assert.Equal(t, "req-1", resp.TraceID)
}

func TestAbortWithCode(t *testing.T) {
	t.Run("writes envelope", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")

		AbortWithCode(c, http.StatusServiceUnavailable, ErrorCodeTimeout, "request timeout exceeded")

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, ErrorCodeTimeout, decodeError(t, w).Error.Code)
	})

	t.Run("already written", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		c.String(http.StatusOK, "partial")

		AbortWithCode(c, http.StatusInternalServerError, ErrorCodeInternal, "boom")

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "partial", w.Body.String())
	})
}
