// Package sqlite provides SQLite-based storage implementations for refdex services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases for better write performance.
	// Indexing rewrites whole corpora; WAL keeps reads available while the
	// element and chunk batches land. Not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction. Batch element and chunk writes run inside
// one transaction so a replaced corpus is never observable half-written.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables if they don't exist.
//
// Element and chunk IDs come from the documentation source and repeat
// across corpora, so both tables key on (corpus_id, id). The embeddings
// table records which content hash was last embedded per chunk and model;
// it intentionally survives re-chunking (no FK to chunks) so unchanged
// chunks skip re-embedding, and is dropped with its corpus.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS corpora (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			source_url TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS elements (
			corpus_id TEXT NOT NULL REFERENCES corpora(id) ON DELETE CASCADE,
			id TEXT NOT NULL,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			text TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			parent_id TEXT NOT NULL DEFAULT '',
			source_url TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (corpus_id, id)
		);

		CREATE INDEX IF NOT EXISTS idx_elements_parent ON elements(corpus_id, parent_id);

		CREATE TABLE IF NOT EXISTS chunks (
			corpus_id TEXT NOT NULL REFERENCES corpora(id) ON DELETE CASCADE,
			id TEXT NOT NULL,
			element_id TEXT NOT NULL,
			parent_chunk_id TEXT NOT NULL DEFAULT '',
			granularity TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL,
			token_count INTEGER NOT NULL DEFAULT 0,
			source_element_ids TEXT NOT NULL DEFAULT '[]',
			source_url TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (corpus_id, id)
		);

		CREATE INDEX IF NOT EXISTS idx_chunks_element ON chunks(corpus_id, element_id);

		CREATE TABLE IF NOT EXISTS embeddings (
			corpus_id TEXT NOT NULL REFERENCES corpora(id) ON DELETE CASCADE,
			chunk_id TEXT NOT NULL,
			model TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			embedded_at TEXT NOT NULL,
			PRIMARY KEY (corpus_id, chunk_id, model)
		);
	`

	_, err := db.db.Exec(schema)
	return err
}
