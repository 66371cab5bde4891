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

var _ ports.SourceRepository = (*SourceRepository)(nil)

const (
	selectSource = `SELECT id, name, created FROM source`
	sourceOrder  = ` ORDER BY name ASC, id ASC`
)

// SourceRepository implements ports.SourceRepository.
type SourceRepository struct {
	store *Store
}

// FindByID returns the source.
func (r *SourceRepository) FindByID(ctx context.Context, id uuid.UUID) (_ *domain.Source, err error) {
	ctx, span := r.store.startSpan(ctx, "sources.FindByID", "source")
	defer func() { endSpan(span, err) }()

	row := r.store.db.QueryRowContext(ctx, r.store.rebind(selectSource+` WHERE id = ?`), id.String())

	source, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("source", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("finding source: %w", err)
	}

	return source, nil
}

// FindByName returns the oldest source with exactly this name.
func (r *SourceRepository) FindByName(ctx context.Context, name string) (_ *domain.Source, err error) {
	ctx, span := r.store.startSpan(ctx, "sources.FindByName", "source")
	defer func() { endSpan(span, err) }()

	row := r.store.db.QueryRowContext(ctx,
		r.store.rebind(selectSource+` WHERE name = ? ORDER BY created ASC, id ASC LIMIT 1`), name)

	source, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("source", "")
	}
	if err != nil {
		return nil, fmt.Errorf("finding source by name: %w", err)
	}

	return source, nil
}

// Save inserts the source or updates its name.
func (r *SourceRepository) Save(ctx context.Context, source *domain.Source) (err error) {
	ctx, span := r.store.startSpan(ctx, "sources.Save", "source")
	defer func() { endSpan(span, err) }()

	if source.Created.IsZero() {
		source.Created = fromMillis(toMillis(r.store.now()))
	}

	_, err = r.store.db.ExecContext(ctx, r.store.rebind(`
		INSERT INTO source (id, name, created) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name`),
		source.ID.String(), source.Name, toMillis(source.Created),
	)
	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}

	return nil
}

// Delete removes the source and clears it from referencing quotes in one
// transaction. A missing id is not an error.
func (r *SourceRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := r.store.startSpan(ctx, "sources.Delete", "source")
	defer func() { endSpan(span, err) }()

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// The foreign key also does this, but SQLite only enforces it when the
	// connection enables foreign_keys.
	if _, err = tx.ExecContext(ctx, r.store.rebind(`UPDATE quote SET source_id = NULL WHERE source_id = ?`), id.String()); err != nil {
		return fmt.Errorf("detaching quotes: %w", err)
	}

	if _, err = tx.ExecContext(ctx, r.store.rebind(`DELETE FROM source WHERE id = ?`), id.String()); err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing source delete: %w", err)
	}

	return nil
}

// List returns every source ordered by name.
func (r *SourceRepository) List(ctx context.Context) (_ []*domain.Source, err error) {
	ctx, span := r.store.startSpan(ctx, "sources.List", "source")
	defer func() { endSpan(span, err) }()

	return r.query(ctx, selectSource+sourceOrder)
}

// Search returns sources whose name contains fragment.
func (r *SourceRepository) Search(ctx context.Context, fragment string) (_ []*domain.Source, err error) {
	ctx, span := r.store.startSpan(ctx, "sources.Search", "source")
	defer func() { endSpan(span, err) }()

	return r.query(ctx, selectSource+" WHERE "+r.store.contains("name")+sourceOrder, fragment)
}

func (r *SourceRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Source, error) {
	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	sources := make([]*domain.Source, 0)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

func scanSource(row scanner) (*domain.Source, error) {
	var (
		id, name string
		created  int64
	)

	if err := row.Scan(&id, &name, &created); err != nil {
		return nil, err
	}

	sourceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing source id %q: %w", id, err)
	}

	return &domain.Source{ID: sourceID, Name: name, Created: fromMillis(created)}, nil
}
