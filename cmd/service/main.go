// Package main is the entry point for the quote-of-the-day service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/qod-service/internal/adapters/clients"
	"github.com/jsamuelsen/qod-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/qod-service/internal/adapters/http"
	"github.com/jsamuelsen/qod-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/qod-service/internal/adapters/storage/sqlstore"
	"github.com/jsamuelsen/qod-service/internal/app"
	"github.com/jsamuelsen/qod-service/internal/platform/config"
	"github.com/jsamuelsen/qod-service/internal/platform/logging"
	"github.com/jsamuelsen/qod-service/internal/platform/metrics"
	"github.com/jsamuelsen/qod-service/internal/platform/telemetry"
	"github.com/jsamuelsen/qod-service/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Local overrides from .env, if present
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	// 2. Load and validate configuration (fail fast)
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	location, err := cfg.QOD.Location()
	if err != nil {
		return err
	}

	proxies, err := cfg.Server.Proxies()
	if err != nil {
		return err
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("qod_timezone", location.String()),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	m := metrics.New(prometheus.DefaultRegisterer)

	// 5. Open the store and apply the schema
	store, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("store close error", slog.Any("error", closeErr))
		}
	}()

	// 6. Health registry
	healthRegistry := ports.NewHealthRegistry(ports.WithCheckTimeout(cfg.Client.Timeout))
	if err := healthRegistry.Register(store); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}

	// 7. Application services
	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Quotes:   store.Quotes(),
		Sources:  store.Sources(),
		Metrics:  m,
		Logger:   logger,
		Location: location,
	})

	sourceService := app.NewSourceService(app.SourceServiceConfig{
		Sources: store.Sources(),
		Quotes:  store.Quotes(),
		Metrics: m,
		Logger:  logger,
	})

	routerCfg := http.RouterConfig{
		Logger:      logger,
		ServiceName: cfg.App.Name,
		Health: handlers.NewHealthHandler(healthRegistry,
			handlers.NewBuildInfo(Version, Commit, BuildTime),
			handlers.WithGatherer(prometheus.DefaultGatherer)),
		Quotes:         handlers.NewQuoteHandler(quoteService),
		Sources:        handlers.NewSourceHandler(sourceService),
		Timeout:        cfg.Server.RequestTimeout,
		TrustedProxies: proxies,
	}

	// 8. Optional upstream import
	if cfg.Services.Quote.Enabled {
		importHandler, err := newImportHandler(cfg, store, m, healthRegistry, logger)
		if err != nil {
			return err
		}
		routerCfg.Import = importHandler
	}

	// 9. HTTP server with all middleware and routes
	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), routerCfg)

	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// newImportHandler wires the upstream quote client behind the ACL and
// registers it as a readiness check.
func newImportHandler(
	cfg *config.Config,
	store *sqlstore.Store,
	m *metrics.Metrics,
	healthRegistry *ports.DefaultHealthRegistry,
	logger *slog.Logger,
) (*handlers.ImportHandler, error) {
	svc := cfg.Services.Quote

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     svc.BaseURL,
		ServiceName: svc.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		OnCircuitChange: func(service string, from, to clients.State) {
			m.RecordCircuitTransition(service, from.String(), to.String())
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating quote service client: %w", err)
	}

	quoteClient := acl.NewQuoteClient(acl.QuoteClientConfig{
		Client: httpClient,
		Logger: logger,
	})

	if err := healthRegistry.Register(quoteClient); err != nil {
		return nil, fmt.Errorf("registering quote client health check: %w", err)
	}

	importService := app.NewImportService(app.ImportServiceConfig{
		Provider:    quoteClient,
		Quotes:      store.Quotes(),
		Sources:     store.Sources(),
		Metrics:     m,
		Logger:      logger,
		Limit:       svc.ImportLimit,
		Concurrency: svc.ImportConcurrency,
	})

	logger.Info("quote import enabled", slog.String("upstream", svc.BaseURL))

	return handlers.NewImportHandler(importService), nil
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight. The store closes after
	// this returns.
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
