// Package sqlstore implements the quote and source repositories on
// database/sql. It runs against SQLite (modernc.org/sqlite, pure Go) or
// PostgreSQL (github.com/lib/pq) with the same queries.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	// Registered drivers.
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/jsamuelsen/qod-service/internal/domain"
	"github.com/jsamuelsen/qod-service/internal/ports"
)

var _ ports.HealthChecker = (*Store)(nil)

const (
	// instrumentationName is used for the OpenTelemetry tracer.
	instrumentationName = "github.com/jsamuelsen/qod-service/internal/adapters/storage/sqlstore"

	// DriverSQLite selects modernc.org/sqlite.
	DriverSQLite = "sqlite"

	// DriverPostgres selects github.com/lib/pq.
	DriverPostgres = "postgres"

	healthCheckName = "database"
)

// Config configures the store connection.
type Config struct {
	// Driver is either DriverSQLite or DriverPostgres.
	Driver string

	// DSN is the driver-specific data source name.
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Logger is an optional logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Now is an optional clock used to stamp created times. Defaults to time.Now.
	Now func() time.Time
}

// Store owns the database handle and hands out repositories bound to it.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time

	quotes  *QuoteRepository
	sources *SourceRepository
}

// Open connects to the database, applies pool settings and makes sure the
// schema exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch cfg.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if cfg.DSN == "" {
		return nil, errors.New("database dsn is required")
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	store := newStore(db, cfg)

	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	store.logger.Info("database ready", slog.String("driver", cfg.Driver))

	return store, nil
}

func newStore(db *sql.DB, cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		db:     db,
		driver: cfg.Driver,
		logger: logger.With(slog.String("component", "sqlstore")),
		tracer: otel.Tracer(instrumentationName),
		now:    now,
	}
	s.quotes = &QuoteRepository{store: s}
	s.sources = &SourceRepository{store: s}

	return s
}

// Quotes returns the quote repository.
func (s *Store) Quotes() *QuoteRepository {
	return s.quotes
}

// Sources returns the source repository.
func (s *Store) Sources() *SourceRepository {
	return s.sources
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name returns the health check name.
func (s *Store) Name() string {
	return healthCheckName
}

// Check pings the database.
func (s *Store) Check(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return domain.NewUnavailableError(healthCheckName, err.Error())
	}

	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	return nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// startSpan opens a client span for a repository call.
func (s *Store) startSpan(ctx context.Context, operation, table string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "sqlstore."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", s.driver),
			attribute.String("db.operation", operation),
			attribute.String("db.sql.table", table),
		),
	)
}

// endSpan records err on the span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil && !domain.IsNotFound(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// toMillis stores times as UTC unix milliseconds.
func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// contains is a case-sensitive substring predicate on column. The fragment
// binds to its single placeholder and is matched literally.
func (s *Store) contains(column string) string {
	if s.driver == DriverPostgres {
		return "strpos(" + column + ", ?) > 0"
	}

	return "instr(" + column + ", ?) > 0"
}
