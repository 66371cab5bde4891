// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/jsamuelsen/qod-service/internal/domain"
)

// QuoteRepository persists quotes.
//
// Every ordered listing uses the same total order: text ascending, then id
// ascending. FetchAt indexes into that order, which keeps the quote of the
// day stable while the collection is unchanged.
type QuoteRepository interface {
	// FindByID returns the quote with its source loaded.
	// Returns domain.ErrNotFound if the quote does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error)

	// Save inserts or updates a quote. Created is never overwritten.
	Save(ctx context.Context, quote *domain.Quote) error

	// Delete removes a quote. Deleting a missing id is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns every quote in the stable order.
	List(ctx context.Context) ([]*domain.Quote, error)

	// Search returns quotes whose text contains fragment as written.
	Search(ctx context.Context, fragment string) ([]*domain.Quote, error)

	// ListBySource returns the quotes attributed to a source.
	ListBySource(ctx context.Context, sourceID uuid.UUID) ([]*domain.Quote, error)

	// Count returns the number of stored quotes.
	Count(ctx context.Context) (int64, error)

	// FetchAt returns the quote at a zero-based position in the stable order.
	// Returns domain.ErrNotFound if no quote occupies that position.
	FetchAt(ctx context.Context, offset int64) (*domain.Quote, error)
}

// SourceRepository persists sources.
type SourceRepository interface {
	// FindByID returns the source.
	// Returns domain.ErrNotFound if the source does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Source, error)

	// FindByName returns the first source with exactly this name.
	// Returns domain.ErrNotFound if there is none.
	FindByName(ctx context.Context, name string) (*domain.Source, error)

	// Save inserts or updates a source. Created is never overwritten.
	Save(ctx context.Context, source *domain.Source) error

	// Delete removes a source and clears it from every quote that referenced it.
	// Deleting a missing id is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns every source ordered by name.
	List(ctx context.Context) ([]*domain.Source, error)

	// Search returns sources whose name contains fragment as written.
	Search(ctx context.Context, fragment string) ([]*domain.Source, error)
}

// QuoteProvider is an upstream service that offers quotes for import.
//
// Key considerations:
//   - Handle timeouts via context deadline
//   - Map external errors to domain errors
//   - Transform external DTOs to domain types
type QuoteProvider interface {
	// RandomQuote fetches one quote from the provider.
	// Returns domain.ErrUnavailable if the provider is unreachable.
	RandomQuote(ctx context.Context) (*domain.ImportedQuote, error)
}
