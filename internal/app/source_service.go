package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jsamuelsen/qod-service/internal/domain"
	"github.com/jsamuelsen/qod-service/internal/platform/metrics"
	"github.com/jsamuelsen/qod-service/internal/ports"
)

// SourceService orchestrates source-related use cases.
type SourceService struct {
	sources ports.SourceRepository
	quotes  ports.QuoteRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// SourceServiceConfig contains configuration for the source service.
type SourceServiceConfig struct {
	Sources ports.SourceRepository
	Quotes  ports.QuoteRepository
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// NewSourceService creates a new source service.
// Panics if either repository is nil.
func NewSourceService(cfg SourceServiceConfig) *SourceService {
	if cfg.Sources == nil || cfg.Quotes == nil {
		panic("app: source and quote repositories are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SourceService{
		sources: cfg.Sources,
		quotes:  cfg.Quotes,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// Create stores a new source.
func (s *SourceService) Create(ctx context.Context, name string) (*domain.Source, error) {
	source := domain.NewSource(name)
	if err := source.Validate(); err != nil {
		return nil, err
	}

	if err := s.sources.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("creating source: %w", err)
	}

	s.logger.InfoContext(ctx, "source created", slog.String("source_id", source.ID.String()))

	return source, nil
}

// List returns every source ordered by name.
func (s *SourceService) List(ctx context.Context) ([]*domain.Source, error) {
	sources, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	return sources, nil
}

// Search returns sources whose name contains fragment.
func (s *SourceService) Search(ctx context.Context, fragment string) ([]*domain.Source, error) {
	if err := domain.ValidateSearchTerm(fragment); err != nil {
		s.metrics.RecordSearchRejected(metrics.ResourceSource)
		return nil, err
	}

	sources, err := s.sources.Search(ctx, fragment)
	if err != nil {
		return nil, fmt.Errorf("searching sources: %w", err)
	}

	return sources, nil
}

// Get returns the source with the given id.
func (s *SourceService) Get(ctx context.Context, id uuid.UUID) (*domain.Source, error) {
	return s.sources.FindByID(ctx, id)
}

// Rename changes the name of an existing source.
func (s *SourceService) Rename(ctx context.Context, id uuid.UUID, name string) (*domain.Source, error) {
	source, err := s.sources.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	source.Name = name
	if err := source.Validate(); err != nil {
		return nil, err
	}

	if err := s.sources.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("renaming source: %w", err)
	}

	return source, nil
}

// Delete removes a source. Quotes attributed to it become unattributed.
// Deleting a missing source succeeds.
func (s *SourceService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.sources.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}

	s.logger.InfoContext(ctx, "source deleted", slog.String("source_id", id.String()))

	return nil
}

// Quotes returns the quotes attributed to a source ordered by text.
// The source lookup and the quote listing run concurrently.
func (s *SourceService) Quotes(ctx context.Context, id uuid.UUID) ([]*domain.Quote, error) {
	_, quotes, err := Both(ctx,
		func(ctx context.Context) (*domain.Source, error) { return s.sources.FindByID(ctx, id) },
		func(ctx context.Context) ([]*domain.Quote, error) { return s.quotes.ListBySource(ctx, id) },
	)
	if err != nil {
		return nil, err
	}

	return quotes, nil
}
