// Package store defines the storage interface implemented by the sqlite subpackage.
package store

import (
	"context"

	"github.com/wikimirror/wikimirror/pkg/model"
)

// SchemaVersion is incremented when schema changes require re-importing.
const SchemaVersion = 1

// Store defines the interface for entity storage.
type Store interface {
	// Lifecycle
	Close() error

	// Write operations (used by the import pipeline)
	Writer

	// Read operations (used by query glue and the HTTP facade)
	Reader
}

// Writer defines write-side operations for the import pipeline.
// A batch is the unit of atomicity: every entity upserted between
// BeginBatch and CommitBatch becomes visible together or not at all.
type Writer interface {
	// BeginBatch starts a batch write transaction.
	BeginBatch() error

	// CommitBatch commits the current batch.
	CommitBatch() error

	// RollbackBatch rolls back the current batch.
	RollbackBatch() error

	// UpsertEntity inserts or replaces one entity by ID.
	UpsertEntity(e *model.StoredEntity) error

	// UpsertEntities inserts or replaces multiple entities.
	UpsertEntities(entities []*model.StoredEntity) error
}

// Reader defines read-side operations.
type Reader interface {
	// GetEntity returns the entity with the given ID (case-insensitive),
	// or nil when no such row exists.
	GetEntity(ctx context.Context, id string) (*model.Entity, error)

	// Search returns up to limit entities matching the full-text query.
	Search(ctx context.Context, query string, limit int) ([]*model.SearchResult, error)

	// Stats returns the total row count and counts grouped by kind.
	Stats(ctx context.Context) (*model.Stats, error)
}
