// Package sqlite provides the SQLite implementation of store.Store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wikimirror/wikimirror/pkg/model"
	"github.com/wikimirror/wikimirror/pkg/store"
)

// SQLite schema version for migrations.
const schemaVersion = store.SchemaVersion

var _ store.Store = (*SQLiteStore)(nil)

// Config holds configuration for the SQLite store.
type Config struct {
	// Path to the SQLite database file.
	DBPath string

	// ReadOnly opens the database in read-only mode.
	ReadOnly bool

	// WAL enables WAL mode for better concurrency.
	WAL bool
}

// SQLiteStore is the SQLite implementation of store.Store.
type SQLiteStore struct {
	db   *sql.DB
	path string
	cfg  Config

	// Write transaction state
	mu    sync.Mutex
	tx    *sql.Tx
	stmts map[string]*sql.Stmt // Prepared statements within tx
}

// New creates a new SQLite store.
func New(cfg Config) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Build DSN
	dsn := cfg.DBPath
	params := "?_synchronous=NORMAL"
	if cfg.ReadOnly {
		params += "&mode=ro"
	}
	if cfg.WAL {
		params += "&_journal_mode=WAL"
	}
	dsn += params

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool (single writer is best practice for SQLite)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:    db,
		path:  cfg.DBPath,
		cfg:   cfg,
		stmts: make(map[string]*sql.Stmt),
	}

	// Initialize schema
	if !cfg.ReadOnly {
		if err := s.initSchema(); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	return s, nil
}

// OpenRead opens an existing database read-only.
func OpenRead(dbPath string) (*SQLiteStore, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	return New(Config{DBPath: dbPath, ReadOnly: true})
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// DB returns the underlying database connection for direct queries.
// Use with caution - prefer using the Store interface methods.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// ────────────────────────────────────────────────────────────────────────────────
// Schema Initialization
// ────────────────────────────────────────────────────────────────────────────────

func (s *SQLiteStore) initSchema() error {
	schema := `
-- Meta table for store metadata
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);

-- Entities table: one row per entity ID, nested payloads as JSON blobs
CREATE TABLE IF NOT EXISTS entities (
	id                TEXT PRIMARY KEY,  -- Q123 or P456
	type              TEXT NOT NULL,     -- item or property
	labels_json       TEXT,              -- {"en": {"value": "Label"}, ...}
	descriptions_json TEXT,
	aliases_json      TEXT,              -- {"en": [{"value": "alias1"}, ...], ...}
	claims_json       TEXT,              -- full claims/statements
	sitelinks_json    TEXT,
	modified          TEXT,              -- last-modified timestamp from the dump
	imported_at       TEXT DEFAULT (datetime('now'))
);

-- Full-text search on English labels and descriptions
CREATE VIRTUAL TABLE IF NOT EXISTS entities_fts USING fts5(
	id,
	label_en,
	description_en,
	aliases_en,
	content=entities,
	content_rowid=rowid
);

-- Triggers keep the FTS table in sync with entities
CREATE TRIGGER IF NOT EXISTS entities_ai AFTER INSERT ON entities BEGIN
	INSERT INTO entities_fts(rowid, id, label_en, description_en, aliases_en)
	VALUES (
		new.rowid,
		new.id,
		json_extract(new.labels_json, '$.en.value'),
		json_extract(new.descriptions_json, '$.en.value'),
		json_extract(new.aliases_json, '$.en')
	);
END;

CREATE TRIGGER IF NOT EXISTS entities_ad AFTER DELETE ON entities BEGIN
	INSERT INTO entities_fts(entities_fts, rowid, id, label_en, description_en, aliases_en)
	VALUES ('delete', old.rowid, old.id,
		json_extract(old.labels_json, '$.en.value'),
		json_extract(old.descriptions_json, '$.en.value'),
		json_extract(old.aliases_json, '$.en')
	);
END;

CREATE TRIGGER IF NOT EXISTS entities_au AFTER UPDATE ON entities BEGIN
	INSERT INTO entities_fts(entities_fts, rowid, id, label_en, description_en, aliases_en)
	VALUES ('delete', old.rowid, old.id,
		json_extract(old.labels_json, '$.en.value'),
		json_extract(old.descriptions_json, '$.en.value'),
		json_extract(old.aliases_json, '$.en')
	);
	INSERT INTO entities_fts(rowid, id, label_en, description_en, aliases_en)
	VALUES (
		new.rowid,
		new.id,
		json_extract(new.labels_json, '$.en.value'),
		json_extract(new.descriptions_json, '$.en.value'),
		json_extract(new.aliases_json, '$.en')
	);
END;

-- Index for kind filtering and aggregation
CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type);
`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	// Set schema version
	_, err = s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`,
		"schema_version", fmt.Sprintf("%d", schemaVersion))
	return err
}

// ────────────────────────────────────────────────────────────────────────────────
// Batch Write Operations
// ────────────────────────────────────────────────────────────────────────────────

// BeginBatch starts a batch write transaction.
func (s *SQLiteStore) BeginBatch() error {
	s.mu.Lock()
	if s.tx != nil {
		s.mu.Unlock()
		return fmt.Errorf("batch already in progress")
	}

	tx, err := s.db.Begin()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.tx = tx
	s.stmts = make(map[string]*sql.Stmt)
	s.mu.Unlock()
	return nil
}

// CommitBatch commits the current batch.
func (s *SQLiteStore) CommitBatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return fmt.Errorf("no batch in progress")
	}

	// Close prepared statements
	for _, stmt := range s.stmts {
		stmt.Close()
	}
	s.stmts = nil

	err := s.tx.Commit()
	s.tx = nil
	return err
}

// RollbackBatch rolls back the current batch.
func (s *SQLiteStore) RollbackBatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return nil
	}

	for _, stmt := range s.stmts {
		stmt.Close()
	}
	s.stmts = nil

	err := s.tx.Rollback()
	s.tx = nil
	return err
}

func (s *SQLiteStore) getStmt(name, query string) (*sql.Stmt, error) {
	if stmt, ok := s.stmts[name]; ok {
		return stmt, nil
	}

	stmt, err := s.tx.Prepare(query)
	if err != nil {
		return nil, err
	}
	s.stmts[name] = stmt
	return stmt, nil
}

// UpsertEntity inserts or replaces one entity by ID.
func (s *SQLiteStore) UpsertEntity(e *model.StoredEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return fmt.Errorf("no batch in progress")
	}

	const query = `INSERT INTO entities (
		id, type, labels_json, descriptions_json, aliases_json,
		claims_json, sitelinks_json, modified
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		type = excluded.type,
		labels_json = excluded.labels_json,
		descriptions_json = excluded.descriptions_json,
		aliases_json = excluded.aliases_json,
		claims_json = excluded.claims_json,
		sitelinks_json = excluded.sitelinks_json,
		modified = excluded.modified,
		imported_at = datetime('now')`

	stmt, err := s.getStmt("upsert_entity", query)
	if err != nil {
		return err
	}

	_, err = stmt.Exec(
		e.ID, e.Kind, e.Labels, e.Descriptions, e.Aliases,
		e.Claims, e.Sitelinks, nullable(e.Modified),
	)
	return err
}

// UpsertEntities inserts or replaces multiple entities.
func (s *SQLiteStore) UpsertEntities(entities []*model.StoredEntity) error {
	for _, e := range entities {
		if err := s.UpsertEntity(e); err != nil {
			return err
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ────────────────────────────────────────────────────────────────────────────────
// Read Operations
// ────────────────────────────────────────────────────────────────────────────────

// GetEntity returns the entity with the given ID, or nil if absent.
// Lookup is case-insensitive: IDs are normalized to upper case.
func (s *SQLiteStore) GetEntity(ctx context.Context, id string) (*model.Entity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, labels_json, descriptions_json, aliases_json,
		       claims_json, sitelinks_json, modified
		FROM entities WHERE id = ?`, model.NormalizeID(id))

	var (
		e        model.Entity
		labels   sql.NullString
		descs    sql.NullString
		aliases  sql.NullString
		claims   sql.NullString
		links    sql.NullString
		modified sql.NullString
	)
	err := row.Scan(&e.ID, &e.Kind, &labels, &descs, &aliases, &claims, &links, &modified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query entity: %w", err)
	}

	e.Labels = rawOrEmpty(labels)
	e.Descriptions = rawOrEmpty(descs)
	e.Aliases = rawOrEmpty(aliases)
	e.Claims = rawOrEmpty(claims)
	e.Sitelinks = rawOrEmpty(links)
	e.Modified = modified.String
	return &e, nil
}

func rawOrEmpty(ns sql.NullString) json.RawMessage {
	if !ns.Valid || ns.String == "" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(ns.String)
}

// Search returns up to limit entities whose English label, description or
// aliases match the full-text query, in FTS5 relevance order.
func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]*model.SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.type,
		       json_extract(e.labels_json, '$.en.value') AS label,
		       json_extract(e.descriptions_json, '$.en.value') AS description
		FROM entities_fts fts
		JOIN entities e ON e.rowid = fts.rowid
		WHERE entities_fts MATCH ?
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var results []*model.SearchResult
	for rows.Next() {
		var (
			r           model.SearchResult
			label, desc sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Kind, &label, &desc); err != nil {
			return nil, err
		}
		r.Label = label.String
		r.Description = desc.String
		results = append(results, &r)
	}
	return results, rows.Err()
}

// Stats returns the total entity count and counts grouped by kind.
func (s *SQLiteStore) Stats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{ByKind: make(map[string]int64)}

	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM entities GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind  string
			count int64
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		stats.ByKind[kind] = count
		stats.Total += count
	}
	return stats, rows.Err()
}
