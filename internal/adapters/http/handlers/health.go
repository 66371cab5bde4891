// Package handlers holds the gin handlers for quotes, sources, upstream
// import and the operational /-/ endpoints.
package handlers

import (
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/qod-service/internal/ports"
)

// BuildInfo is served by /-/build.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo records the ldflags values. When commit was not injected,
// the VCS revision stamped by the go tool is used instead.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	if commit == "" || commit == "unknown" {
		commit = vcsRevision(commit)
	}

	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

func vcsRevision(fallback string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallback
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}

	return fallback
}

// HealthHandler serves /-/live, /-/ready, /-/build and /-/metrics.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
	metrics   http.Handler
}

// HealthHandlerOption configures a HealthHandler.
type HealthHandlerOption func(*HealthHandler)

// WithGatherer sets the registry /-/metrics exposes instead of
// prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) HealthHandlerOption {
	return func(h *HealthHandler) {
		h.metrics = MetricsHandler(g)
	}
}

// NewHealthHandler creates a health handler over registry.
func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo, opts ...HealthHandlerOption) *HealthHandler {
	h := &HealthHandler{
		registry:  registry,
		buildInfo: buildInfo,
		metrics:   MetricsHandler(prometheus.DefaultGatherer),
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Liveness reports that the process is serving. It touches neither the
// database nor the upstream quote service.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness runs the registered checks and answers 503 when any fails.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	status := http.StatusOK
	if result.Status != ports.HealthStatusHealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, result)
}

// BuildInfoHandler serves the build metadata.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// MetricsHandler exposes g in the Prometheus text format.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RegisterHealthRoutes mounts the operational routes on rg, which the
// router roots at /-.
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.BuildInfoHandler)
	rg.GET("/metrics", gin.WrapH(h.metrics))
}

// RegisterHealthRoutesOnEngine mounts the routes under /-.
func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	h.RegisterHealthRoutes(engine.Group("/-"))
}
