package http

import (
	"log/slog"
	"net/netip"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/qod-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/qod-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/qod-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/qod-service/internal/platform/telemetry"
)

// RouterConfig names what SetupRouter mounts. Nil handlers are skipped.
type RouterConfig struct {
	Logger *slog.Logger

	// ServiceName labels server spans and request metrics.
	ServiceName string

	Health  *handlers.HealthHandler
	Quotes  *handlers.QuoteHandler
	Sources *handlers.SourceHandler

	// Import is nil when the upstream quote service is disabled.
	Import *handlers.ImportHandler

	// Timeout bounds API requests; probes are never bounded. Zero disables it.
	Timeout time.Duration

	// TrustedProxies are the peers whose X-Forwarded-* headers shape hrefs.
	TrustedProxies []netip.Prefix
}

// SetupRouter installs the middleware chain and every route on engine.
//
// Order matters: recovery wraps everything, the ids are assigned before
// the server span opens, and the logger sees the trace id the span set.
// The /-/ endpoints sit outside the timeout.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		middleware.Forwarded(cfg.TrustedProxies),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging(cfg.Logger))

	engine.NoRoute(func(c *gin.Context) {
		dto.RespondWithCode(c, dto.ErrorCodeNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
	})

	if cfg.Health != nil {
		cfg.Health.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group("")
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.Quotes != nil {
		cfg.Quotes.RegisterQuoteRoutes(api)
	}
	if cfg.Sources != nil {
		cfg.Sources.RegisterSourceRoutes(api)
	}
	if cfg.Import != nil {
		cfg.Import.RegisterImportRoutes(api)
	}
}
