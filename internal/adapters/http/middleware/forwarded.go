package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderForwardedHost is the host a fronting proxy was addressed as.
	HeaderForwardedHost = "X-Forwarded-Host"

	// HeaderForwardedProto is the scheme a fronting proxy was addressed with.
	HeaderForwardedProto = "X-Forwarded-Proto"

	// ContextKeyBaseURL is the gin.Context key holding the public base URL.
	ContextKeyBaseURL = "base_url"
)

// Forwarded resolves the scheme and host clients addressed and stores it
// under ContextKeyBaseURL. The X-Forwarded-* headers are read only when the
// direct peer falls inside trusted; for a proxy chain the first,
// client-facing entry is used.
func Forwarded(trusted []netip.Prefix) gin.HandlerFunc {
	return func(c *gin.Context) {
		base := directBaseURL(c.Request)
		if trustedPeer(c.RemoteIP(), trusted) {
			base = forwardedBaseURL(c.Request, base)
		}

		c.Set(ContextKeyBaseURL, base)
		c.Next()
	}
}

// BaseURL returns the base URL resolved by Forwarded, or the one the
// request itself carries when Forwarded did not run.
func BaseURL(c *gin.Context) string {
	if base := c.GetString(ContextKeyBaseURL); base != "" {
		return base
	}

	return directBaseURL(c.Request)
}

func directBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	return scheme + "://" + r.Host
}

func forwardedBaseURL(r *http.Request, fallback string) string {
	scheme, host, _ := strings.Cut(fallback, "://")

	if proto := strings.ToLower(firstListValue(r.Header.Get(HeaderForwardedProto))); proto == "http" || proto == "https" {
		scheme = proto
	}

	if fwd := firstListValue(r.Header.Get(HeaderForwardedHost)); validHost(fwd) {
		host = fwd
	}

	return scheme + "://" + host
}

func trustedPeer(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}

	return false
}

func firstListValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

// validHost accepts a host[:port] without path, userinfo or whitespace.
func validHost(host string) bool {
	if host == "" || len(host) > 255 {
		return false
	}

	return !strings.ContainsAny(host, "/\\@?# \t")
}
