package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/qod-service/internal/app/memo"
	"github.com/jsamuelsen/qod-service/internal/domain"
	"github.com/jsamuelsen/qod-service/internal/platform/metrics"
	"github.com/jsamuelsen/qod-service/internal/ports"
)

const (
	defaultImportLimit       = 10
	defaultImportConcurrency = 4
)

// ImportResult reports the outcome of a batch import.
type ImportResult struct {
	Imported []*domain.Quote
	Failed   int
}

// ImportService copies quotes from an upstream provider into the local store,
// attributing each to a source named after its author.
type ImportService struct {
	provider    ports.QuoteProvider
	quotes      ports.QuoteRepository
	sources     ports.SourceRepository
	executor    *Executor
	metrics     *metrics.Metrics
	logger      *slog.Logger
	limit       int
	concurrency int
}

// ImportServiceConfig contains configuration for the import service.
type ImportServiceConfig struct {
	Provider ports.QuoteProvider
	Quotes   ports.QuoteRepository
	Sources  ports.SourceRepository
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// Limit is the largest batch a single call may request.
	Limit int

	// Concurrency bounds the number of in-flight upstream requests.
	Concurrency int
}

// NewImportService creates a new import service.
// Panics if the provider or a repository is nil.
func NewImportService(cfg ImportServiceConfig) *ImportService {
	if cfg.Provider == nil || cfg.Quotes == nil || cfg.Sources == nil {
		panic("app: provider, quote and source repositories are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultImportLimit
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultImportConcurrency
	}

	return &ImportService{
		provider:    cfg.Provider,
		quotes:      cfg.Quotes,
		sources:     cfg.Sources,
		executor:    NewExecutor(logger),
		metrics:     cfg.Metrics,
		logger:      logger,
		limit:       limit,
		concurrency: concurrency,
	}
}

// Import fetches count quotes from the provider and stores them.
// Individual failures are counted, not returned, unless every fetch failed,
// in which case the first error is returned.
func (s *ImportService) Import(ctx context.Context, count int) (*ImportResult, error) {
	if count < 1 || count > s.limit {
		return nil, domain.NewValidationErrorWithValue("count",
			fmt.Sprintf("must be between 1 and %d", s.limit), count)
	}

	ctx, _ = memo.Attach(ctx)
	op := s.importOperation()

	results := FanOut(ctx, count, s.concurrency, func(ctx context.Context, i int) (*domain.Quote, error) {
		return Execute(ctx, s.executor, op, i)
	})

	out := &ImportResult{Imported: make([]*domain.Quote, 0, count)}

	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			out.Failed++
			s.metrics.RecordImport(metrics.ResultFailed)
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}

		out.Imported = append(out.Imported, r.Value)
		s.metrics.RecordImport(metrics.ResultImported)
	}

	if len(out.Imported) == 0 {
		return nil, fmt.Errorf("importing quotes: %w", firstErr)
	}

	s.logger.InfoContext(ctx, "quotes imported",
		slog.Int("requested", count),
		slog.Int("imported", len(out.Imported)),
		slog.Int("failed", out.Failed),
	)

	return out, nil
}

// importCandidate is a verified upstream quote waiting to be archived.
type importCandidate struct {
	quote  *domain.Quote
	author string
}

func (s *ImportService) importOperation() Operation[int, *domain.ImportedQuote, *importCandidate, *domain.Quote] {
	return Operation[int, *domain.ImportedQuote, *importCandidate, *domain.Quote]{
		Name: "ImportQuote",

		Validate: func(ctx context.Context, _ int) error {
			return ctx.Err()
		},

		Perform: func(ctx context.Context, _ int) (*domain.ImportedQuote, error) {
			return s.provider.RandomQuote(ctx)
		},

		Verify: func(_ context.Context, _ int, imported *domain.ImportedQuote) (*importCandidate, error) {
			if imported == nil {
				return nil, domain.NewValidationError("quote", "provider returned no quote")
			}

			text := strings.TrimSpace(imported.Text)
			author := strings.TrimSpace(imported.Author)

			if author == "" {
				return nil, domain.NewValidationErrorWithValue("author", "must not be empty", imported.ExternalID)
			}

			quote := domain.NewQuote(text, nil)
			if err := quote.Validate(); err != nil {
				return nil, err
			}

			return &importCandidate{quote: quote, author: author}, nil
		},

		Archive: func(ctx context.Context, _ int, candidate *importCandidate) error {
			source, err := memo.Value(ctx, "source:"+candidate.author, func(ctx context.Context) (*domain.Source, error) {
				return s.sourceNamed(ctx, candidate.author)
			})
			if err != nil {
				return err
			}

			candidate.quote.Source = source

			return s.quotes.Save(ctx, candidate.quote)
		},

		Respond: func(_ context.Context, _ int, candidate *importCandidate) (*domain.Quote, error) {
			return candidate.quote, nil
		},
	}
}

// sourceNamed finds a source by exact name, creating it when absent.
func (s *ImportService) sourceNamed(ctx context.Context, name string) (*domain.Source, error) {
	source, err := s.sources.FindByName(ctx, name)
	if err == nil {
		return source, nil
	}
	if !domain.IsNotFound(err) {
		return nil, fmt.Errorf("finding source: %w", err)
	}

	source = domain.NewSource(name)
	if err := s.sources.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("creating source: %w", err)
	}

	return source, nil
}
