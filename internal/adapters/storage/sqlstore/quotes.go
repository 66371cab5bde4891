package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jsamuelsen/qod-service/internal/domain"
	"github.com/jsamuelsen/qod-service/internal/ports"
)

var _ ports.QuoteRepository = (*QuoteRepository)(nil)

const (
	selectQuote = `SELECT q.id, q.text, q.created, s.id, s.name, s.created
		FROM quote q LEFT JOIN source s ON s.id = q.source_id`

	// quoteOrder is the stable total order shared by listing, search and FetchAt.
	quoteOrder = ` ORDER BY q.text ASC, q.id ASC`
)

// QuoteRepository implements ports.QuoteRepository.
type QuoteRepository struct {
	store *Store
}

// FindByID returns the quote with its source loaded.
func (r *QuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (_ *domain.Quote, err error) {
	ctx, span := r.store.startSpan(ctx, "quotes.FindByID", "quote")
	defer func() { endSpan(span, err) }()

	row := r.store.db.QueryRowContext(ctx, r.store.rebind(selectQuote+` WHERE q.id = ?`), id.String())

	quote, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("quote", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("finding quote: %w", err)
	}

	return quote, nil
}

// Save inserts the quote or updates its text and source. Created is stamped
// on first insert and never overwritten.
func (r *QuoteRepository) Save(ctx context.Context, quote *domain.Quote) (err error) {
	ctx, span := r.store.startSpan(ctx, "quotes.Save", "quote")
	defer func() { endSpan(span, err) }()

	if quote.Created.IsZero() {
		quote.Created = fromMillis(toMillis(r.store.now()))
	}

	var sourceID sql.NullString
	if id := quote.SourceID(); id != nil {
		sourceID = sql.NullString{String: id.String(), Valid: true}
	}

	_, err = r.store.db.ExecContext(ctx, r.store.rebind(`
		INSERT INTO quote (id, text, source_id, created) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET text = excluded.text, source_id = excluded.source_id`),
		quote.ID.String(), quote.Text, sourceID, toMillis(quote.Created),
	)
	if err != nil {
		return fmt.Errorf("saving quote: %w", err)
	}

	return nil
}

// Delete removes the quote. A missing id is not an error.
func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := r.store.startSpan(ctx, "quotes.Delete", "quote")
	defer func() { endSpan(span, err) }()

	if _, err = r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM quote WHERE id = ?`), id.String()); err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}

	return nil
}

// List returns every quote ordered by text.
func (r *QuoteRepository) List(ctx context.Context) (_ []*domain.Quote, err error) {
	ctx, span := r.store.startSpan(ctx, "quotes.List", "quote")
	defer func() { endSpan(span, err) }()

	return r.query(ctx, selectQuote+quoteOrder)
}

// Search returns quotes whose text contains fragment.
func (r *QuoteRepository) Search(ctx context.Context, fragment string) (_ []*domain.Quote, err error) {
	ctx, span := r.store.startSpan(ctx, "quotes.Search", "quote")
	defer func() { endSpan(span, err) }()

	return r.query(ctx, selectQuote+" WHERE "+r.store.contains("q.text")+quoteOrder, fragment)
}

// ListBySource returns the quotes attributed to a source ordered by text.
func (r *QuoteRepository) ListBySource(ctx context.Context, sourceID uuid.UUID) (_ []*domain.Quote, err error) {
	ctx, span := r.store.startSpan(ctx, "quotes.ListBySource", "quote")
	defer func() { endSpan(span, err) }()

	return r.query(ctx, selectQuote+` WHERE q.source_id = ?`+quoteOrder, sourceID.String())
}

// Count returns the number of stored quotes.
func (r *QuoteRepository) Count(ctx context.Context) (_ int64, err error) {
	ctx, span := r.store.startSpan(ctx, "quotes.Count", "quote")
	defer func() { endSpan(span, err) }()

	var n int64
	if err = r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quote`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting quotes: %w", err)
	}

	return n, nil
}

// FetchAt returns the quote at a zero-based position of the ordered listing.
func (r *QuoteRepository) FetchAt(ctx context.Context, offset int64) (_ *domain.Quote, err error) {
	ctx, span := r.store.startSpan(ctx, "quotes.FetchAt", "quote")
	defer func() { endSpan(span, err) }()

	if offset < 0 {
		return nil, domain.NewNotFoundError("quote", "")
	}

	row := r.store.db.QueryRowContext(ctx, r.store.rebind(selectQuote+quoteOrder+` LIMIT 1 OFFSET ?`), offset)

	quote, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("quote", "")
	}
	if err != nil {
		return nil, fmt.Errorf("fetching quote at %d: %w", offset, err)
	}

	return quote, nil
}

func (r *QuoteRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Quote, error) {
	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]*domain.Quote, 0)
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		quotes = append(quotes, quote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotes: %w", err)
	}

	return quotes, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (*domain.Quote, error) {
	var (
		id, text      string
		created       int64
		sourceID      sql.NullString
		sourceName    sql.NullString
		sourceCreated sql.NullInt64
	)

	if err := row.Scan(&id, &text, &created, &sourceID, &sourceName, &sourceCreated); err != nil {
		return nil, err
	}

	quoteID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing quote id %q: %w", id, err)
	}

	quote := &domain.Quote{
		ID:      quoteID,
		Text:    text,
		Created: fromMillis(created),
	}

	if sourceID.Valid {
		sid, err := uuid.Parse(sourceID.String)
		if err != nil {
			return nil, fmt.Errorf("parsing source id %q: %w", sourceID.String, err)
		}
		quote.Source = &domain.Source{
			ID:      sid,
			Name:    sourceName.String,
			Created: fromMillis(sourceCreated.Int64),
		}
	}

	return quote, nil
}
