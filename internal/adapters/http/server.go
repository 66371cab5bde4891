// Package http is the gin-based HTTP adapter: server lifecycle, router and
// route wiring.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/qod-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/qod-service/internal/platform/config"
)

// Server owns the gin engine and the net/http server in front of it.
type Server struct {
	engine   *gin.Engine
	srv      *http.Server
	cfg      *config.ServerConfig
	logger   *slog.Logger
	listener net.Listener
}

// New builds a server for cfg. Nothing listens until Start.
func New(cfg *config.ServerConfig, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn("ignoring trusted proxies", slog.Any("error", err))
		_ = engine.SetTrustedProxies(nil)
	}
	engine.Use(limitBody(cfg.MaxRequestSize))

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           engine,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Engine returns the gin engine routes are registered on.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Config returns the server configuration.
func (s *Server) Config() *config.ServerConfig {
	return s.cfg
}

// Start binds the listen address and serves in the background. Bind
// failures are returned directly; the channel carries a later serve error
// and is closed when serving stops.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.listener = ln

	s.logger.Info("http server listening",
		slog.String("addr", ln.Addr().String()),
		slog.Duration("read_timeout", s.cfg.ReadTimeout),
		slog.Duration("write_timeout", s.cfg.WriteTimeout),
	)

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)

		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serving http: %w", err)
		}
	}()

	return errCh, nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info("http server stopped")

	return nil
}

// Addr is the bound address once started (useful with port 0), otherwise
// the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}

	return s.srv.Addr
}

// limitBody rejects requests whose declared length exceeds maxBytes and caps
// the rest, so handlers reading past the limit get an error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			dto.AbortWithCode(c, http.StatusRequestEntityTooLarge, dto.ErrorCodeBadRequest,
				"request body exceeds "+strconv.FormatInt(maxBytes, 10)+" bytes")
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
