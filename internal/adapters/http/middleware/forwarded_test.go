package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwarded(t *testing.T) {
	t.Parallel()

	proxy := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name     string
		trusted  []netip.Prefix
		peer     string
		headers  map[string]string
		expected string
	}{
		{
			name:     "no headers",
			trusted:  proxy,
			peer:     "10.1.2.3:5000",
			expected: "http://qod.internal",
		},
		{
			name:    "untrusted peer is ignored",
			trusted: proxy,
			peer:    "203.0.113.9:5000",
			headers: map[string]string{
				HeaderForwardedHost:  "evil.example",
				HeaderForwardedProto: "https",
			},
			expected: "http://qod.internal",
		},
		{
			name:     "nothing trusted by default",
			peer:     "10.1.2.3:5000",
			headers:  map[string]string{HeaderForwardedHost: "evil.example"},
			expected: "http://qod.internal",
		},
		{
			name:    "trusted peer",
			trusted: proxy,
			peer:    "10.1.2.3:5000",
			headers: map[string]string{
				HeaderForwardedHost:  "quotes.example.com",
				HeaderForwardedProto: "https",
			},
			expected: "https://quotes.example.com",
		},
		{
			name:    "proxy chain uses the first entry",
			trusted: proxy,
			peer:    "10.1.2.3:5000",
			headers: map[string]string{
				HeaderForwardedHost:  "quotes.example.com, edge.internal",
				HeaderForwardedProto: "https,http",
			},
			expected: "https://quotes.example.com",
		},
		{
			name:    "unknown scheme and malformed host fall back",
			trusted: proxy,
			peer:    "10.1.2.3:5000",
			headers: map[string]string{
				HeaderForwardedHost:  "evil.example/path",
				HeaderForwardedProto: "javascript",
			},
			expected: "http://qod.internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := gin.New()
			router.Use(Forwarded(tt.trusted))
			router.GET("/", func(c *gin.Context) {
				c.String(http.StatusOK, BaseURL(c))
			})

			req := httptest.NewRequest(http.MethodGet, "http://qod.internal/", nil)
			req.RemoteAddr = tt.peer
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expected, w.Body.String())
		})
	}
}

func TestBaseURL_WithoutForwarded(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, BaseURL(c))
	})

	req := httptest.NewRequest(http.MethodGet, "http://qod.internal/", nil)
	req.Header.Set(HeaderForwardedHost, "evil.example")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://qod.internal", w.Body.String())
}
