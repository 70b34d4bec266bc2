package query

import (
	"context"
	"fmt"

	"github.com/wikimirror/wikimirror/pkg/model"
	"github.com/wikimirror/wikimirror/pkg/store/sqlite"
)

// Engine answers read-side queries against an imported store. It opens
// the database read-only and may run concurrently with an import; it
// then sees whatever the importer has committed so far.
type Engine struct {
	store *sqlite.SQLiteStore
}

// Open opens the store at dbPath for querying.
func Open(dbPath string) (*Engine, error) {
	s, err := sqlite.OpenRead(dbPath)
	if err != nil {
		return nil, err
	}
	return &Engine{store: s}, nil
}

// NewEngine wraps an already-open store.
func NewEngine(s *sqlite.SQLiteStore) *Engine {
	return &Engine{store: s}
}

// Close closes the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// GetEntity returns the full entity for an ID, or nil when not found.
func (e *Engine) GetEntity(ctx context.Context, id string) (*model.Entity, error) {
	return e.store.GetEntity(ctx, id)
}

// Search runs a full-text search, optionally post-filtered by an expr
// filter expression. The limit applies after filtering.
func (e *Engine) Search(ctx context.Context, q string, limit int, filterStr string) ([]*model.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	var filterFn func(*model.SearchResult) bool
	fetch := limit
	if filterStr != "" {
		var err error
		filterFn, err = CompileFilter(filterStr)
		if err != nil {
			return nil, err
		}
		// Over-fetch so the filter still has limit rows to keep.
		fetch = limit * 10
	}

	results, err := e.store.Search(ctx, sanitizeFTSQuery(q), fetch)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q, err)
	}

	if filterFn == nil {
		return results, nil
	}
	filtered := results[:0]
	for _, r := range results {
		if filterFn(r) {
			filtered = append(filtered, r)
			if len(filtered) == limit {
				break
			}
		}
	}
	return filtered, nil
}

// Stats returns the total row count and per-kind counts.
func (e *Engine) Stats(ctx context.Context) (*model.Stats, error) {
	return e.store.Stats(ctx)
}
