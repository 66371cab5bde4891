// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters)
//   - Database queries (that's repository adapters)
//   - Core domain logic (that's the domain layer)
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/qod-service/internal/domain"
	"github.com/jsamuelsen/qod-service/internal/platform/metrics"
	"github.com/jsamuelsen/qod-service/internal/ports"
)

// SourceRef identifies the source a quote should be attributed to.
// A non-nil ID refers to an existing source. Otherwise a non-blank Name
// creates a new source.
type SourceRef struct {
	ID   *uuid.UUID
	Name string
}

// QuoteInput is the caller-supplied content of a quote.
type QuoteInput struct {
	Text   string
	Source *SourceRef
}

// QuoteService orchestrates quote-related use cases.
// It depends on port interfaces, not concrete implementations,
// following the Dependency Inversion Principle.
type QuoteService struct {
	quotes   ports.QuoteRepository
	sources  ports.SourceRepository
	metrics  *metrics.Metrics
	logger   *slog.Logger
	location *time.Location
	now      func() time.Time
	pick     func(n int64) int64
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Quotes  ports.QuoteRepository
	Sources ports.SourceRepository

	// Metrics is optional.
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// Location decides which calendar day "today" is. Defaults to time.Local.
	Location *time.Location

	// Now and Pick are test seams. They default to time.Now and rand.Int64N.
	Now  func() time.Time
	Pick func(n int64) int64
}

// NewQuoteService creates a new quote service with the provided dependencies.
// Panics if either repository is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Quotes == nil || cfg.Sources == nil {
		panic("app: quote and source repositories are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	pick := cfg.Pick
	if pick == nil {
		pick = rand.Int64N
	}

	return &QuoteService{
		quotes:   cfg.Quotes,
		sources:  cfg.Sources,
		metrics:  cfg.Metrics,
		logger:   logger,
		location: location,
		now:      now,
		pick:     pick,
	}
}

// Today returns the current time in the configured location.
func (s *QuoteService) Today() time.Time {
	return s.now().In(s.location)
}

// Create validates and stores a new quote.
func (s *QuoteService) Create(ctx context.Context, input QuoteInput) (*domain.Quote, error) {
	quote := domain.NewQuote(input.Text, nil)
	if err := quote.Validate(); err != nil {
		return nil, err
	}

	source, created, err := s.resolveSource(ctx, input.Source)
	if err != nil {
		return nil, err
	}
	quote.Source = source

	if err := s.quotes.Save(ctx, quote); err != nil {
		s.discardSource(ctx, source, created)
		return nil, fmt.Errorf("creating quote: %w", err)
	}

	s.logger.InfoContext(ctx, "quote created",
		slog.String("quote_id", quote.ID.String()),
		slog.Bool("attributed", quote.Source != nil),
	)

	return quote, nil
}

// List returns every quote ordered by text.
func (s *QuoteService) List(ctx context.Context) ([]*domain.Quote, error) {
	quotes, err := s.quotes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}

	return quotes, nil
}

// Search returns quotes containing fragment, ordered by text.
// Fragments shorter than domain.MinSearchTermLength are rejected before any query.
func (s *QuoteService) Search(ctx context.Context, fragment string) ([]*domain.Quote, error) {
	if err := domain.ValidateSearchTerm(fragment); err != nil {
		s.metrics.RecordSearchRejected(metrics.ResourceQuote)
		return nil, err
	}

	quotes, err := s.quotes.Search(ctx, fragment)
	if err != nil {
		return nil, fmt.Errorf("searching quotes: %w", err)
	}

	return quotes, nil
}

// Random returns a uniformly chosen quote.
func (s *QuoteService) Random(ctx context.Context) (*domain.Quote, error) {
	count, err := s.quotes.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting quotes: %w", err)
	}

	if count <= 0 {
		return nil, domain.NewEmptyCollectionError("quote")
	}

	quote, err := s.fetchAt(ctx, s.pick(count))
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSelection(metrics.ModeRandom)

	return quote, nil
}

// QuoteOfDay returns the quote assigned to the calendar date of date.
// The same date maps to the same quote while the collection is unchanged.
func (s *QuoteService) QuoteOfDay(ctx context.Context, date time.Time) (*domain.Quote, error) {
	count, err := s.quotes.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting quotes: %w", err)
	}

	offset, err := domain.DayOffset(date, count)
	if err != nil {
		return nil, err
	}

	quote, err := s.fetchAt(ctx, offset)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSelection(metrics.ModeQuoteOfDay)
	s.logger.DebugContext(ctx, "quote of the day selected",
		slog.String("date", date.Format(time.DateOnly)),
		slog.Int64("offset", offset),
		slog.Int64("count", count),
	)

	return quote, nil
}

// Get returns the quote with the given id.
func (s *QuoteService) Get(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	return s.quotes.FindByID(ctx, id)
}

// Replace overwrites the text and source of an existing quote. A nil source
// reference clears the attribution.
func (s *QuoteService) Replace(ctx context.Context, id uuid.UUID, input QuoteInput) (*domain.Quote, error) {
	quote, err := s.quotes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	quote.Text = input.Text
	if err := quote.Validate(); err != nil {
		return nil, err
	}

	source, created, err := s.resolveSource(ctx, input.Source)
	if err != nil {
		return nil, err
	}
	quote.Source = source

	if err := s.quotes.Save(ctx, quote); err != nil {
		s.discardSource(ctx, source, created)
		return nil, fmt.Errorf("replacing quote: %w", err)
	}

	s.logger.InfoContext(ctx, "quote replaced", slog.String("quote_id", id.String()))

	return quote, nil
}

// ReplaceText overwrites only the text of an existing quote and returns the stored text.
func (s *QuoteService) ReplaceText(ctx context.Context, id uuid.UUID, text string) (string, error) {
	quote, err := s.quotes.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	quote.Text = text
	if err := quote.Validate(); err != nil {
		return "", err
	}

	if err := s.quotes.Save(ctx, quote); err != nil {
		return "", fmt.Errorf("replacing quote text: %w", err)
	}

	return quote.Text, nil
}

// Delete removes a quote. Deleting a missing quote succeeds.
func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.quotes.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}

	s.logger.InfoContext(ctx, "quote deleted", slog.String("quote_id", id.String()))

	return nil
}

// AttachSource attributes a quote to a source. Nothing is written when the
// quote already has that source.
func (s *QuoteService) AttachSource(ctx context.Context, quoteID, sourceID uuid.UUID) (*domain.Quote, error) {
	quote, source, err := s.findPair(ctx, quoteID, sourceID)
	if err != nil {
		return nil, err
	}

	if quote.HasSource(source.ID) {
		return quote, nil
	}

	quote.Source = source
	if err := s.quotes.Save(ctx, quote); err != nil {
		return nil, fmt.Errorf("attaching source: %w", err)
	}

	return quote, nil
}

// DetachSource clears the quote's source only when it is sourceID.
// A quote attributed elsewhere is returned unchanged.
func (s *QuoteService) DetachSource(ctx context.Context, quoteID, sourceID uuid.UUID) (*domain.Quote, error) {
	quote, source, err := s.findPair(ctx, quoteID, sourceID)
	if err != nil {
		return nil, err
	}

	if !quote.HasSource(source.ID) {
		return quote, nil
	}

	quote.Source = nil
	if err := s.quotes.Save(ctx, quote); err != nil {
		return nil, fmt.Errorf("detaching source: %w", err)
	}

	return quote, nil
}

// ClearSource removes whatever source the quote has.
func (s *QuoteService) ClearSource(ctx context.Context, quoteID uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	quote.Source = nil
	if err := s.quotes.Save(ctx, quote); err != nil {
		return nil, fmt.Errorf("clearing source: %w", err)
	}

	return quote, nil
}

// findPair loads a quote and a source, failing if either is missing.
func (s *QuoteService) findPair(ctx context.Context, quoteID, sourceID uuid.UUID) (*domain.Quote, *domain.Source, error) {
	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}

	source, err := s.sources.FindByID(ctx, sourceID)
	if err != nil {
		return nil, nil, err
	}

	return quote, source, nil
}

// fetchAt loads the quote at offset. A collection that shrank since it was
// counted surfaces as not found.
func (s *QuoteService) fetchAt(ctx context.Context, offset int64) (*domain.Quote, error) {
	quote, err := s.quotes.FetchAt(ctx, offset)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("fetching quote: %w", err)
	}

	return quote, nil
}

// resolveSource turns a reference into a stored source. Nil or empty
// references resolve to no source. created reports whether the source was
// saved for this reference.
func (s *QuoteService) resolveSource(ctx context.Context, ref *SourceRef) (source *domain.Source, created bool, err error) {
	if ref == nil {
		return nil, false, nil
	}

	if ref.ID != nil {
		source, err = s.sources.FindByID(ctx, *ref.ID)
		return source, false, err
	}

	if ref.Name == "" {
		return nil, false, nil
	}

	source = domain.NewSource(ref.Name)
	if err := source.Validate(); err != nil {
		return nil, false, err
	}

	if err := s.sources.Save(ctx, source); err != nil {
		return nil, false, fmt.Errorf("creating source: %w", err)
	}

	s.logger.InfoContext(ctx, "source created for quote", slog.String("source_id", source.ID.String()))

	return source, true, nil
}

// discardSource removes a source created for a quote that was not stored.
// The delete ignores cancellation of ctx.
func (s *QuoteService) discardSource(ctx context.Context, source *domain.Source, created bool) {
	if !created {
		return
	}

	if err := s.sources.Delete(context.WithoutCancel(ctx), source.ID); err != nil {
		s.logger.WarnContext(ctx, "removing source of unsaved quote",
			slog.String("source_id", source.ID.String()),
			slog.Any("error", err),
		)
	}
}
