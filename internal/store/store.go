// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists curated documents in a local SQLite database.
// Records are always scoped to an owner identity; full-text search over the
// stored Markdown is backed by an FTS5 index kept in sync with triggers.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

const dbFile = "silverforge.db"

// Store manages the curated-documents SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int

	// fts is false when the driver was built without the FTS5 module
	// (build tag sqlite_fts5); Search then degrades to a substring scan.
	fts bool
}

// New opens or creates the document database at cfg.DataDir/silverforge.db,
// creating the schema if it does not exist.
func New(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			owner TEXT NOT NULL,
			filename TEXT NOT NULL,
			markdown TEXT NOT NULL,
			score INTEGER NOT NULL,
			details TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	if _, err := s.db.Exec(
		`CREATE VIRTUAL TABLE documents_fts USING fts5(markdown, content=documents, content_rowid=rowid)`,
	); err != nil {
		// The FTS5 module is only compiled in under the sqlite_fts5 build
		// tag. Without it the store still works; Search scans substrings.
		if strings.Contains(err.Error(), "no such module: fts5") {
			fmt.Fprintln(os.Stderr, "warning: SQLite built without FTS5 (build with -tags sqlite_fts5); search falls back to substring matching")
			return nil
		}
		return fmt.Errorf("creating FTS infrastructure: %w", err)
	}

	ftsTriggers := []string{
		`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO documents_fts(rowid, markdown) VALUES (new.rowid, new.markdown);
		END`,
		`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, markdown) VALUES('delete', old.rowid, old.markdown);
		END`,
		`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, markdown) VALUES('delete', old.rowid, old.markdown);
			INSERT INTO documents_fts(rowid, markdown) VALUES (new.rowid, new.markdown);
		END`,
	}
	for _, stmt := range ftsTriggers {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	s.fts = true

	return nil
}

// Save inserts a curated document and returns the record with its assigned
// ID and timestamp filled in.
func (s *Store) Save(ctx context.Context, rec types.DocumentRecord) (types.DocumentRecord, error) {
	if rec.Owner == "" {
		return rec, fmt.Errorf("document owner is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()[:8]
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, owner, filename, markdown, score, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Owner, rec.Filename, rec.Markdown, rec.Score, rec.Details,
		rec.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return rec, fmt.Errorf("inserting document %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Get returns a single document by ID, scoped to the owner.
func (s *Store) Get(ctx context.Context, id, owner string) (*types.DocumentRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, filename, markdown, score, details, created_at
		 FROM documents WHERE id = ? AND owner = ?`, id, owner)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", id, err)
	}
	return rec, nil
}

// List returns the owner's documents, most recent first, capped at limit
// (store default when <= 0).
func (s *Store) List(ctx context.Context, owner string, limit int) ([]types.DocumentRecord, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, filename, markdown, score, details, created_at
		 FROM documents WHERE owner = ? ORDER BY created_at DESC LIMIT ?`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("listing documents for %s: %w", owner, err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Search runs an FTS5 full-text query over the owner's stored Markdown,
// ranked by relevance. When the FTS5 module is unavailable the query
// degrades to a case-insensitive substring match, newest first.
func (s *Store) Search(ctx context.Context, owner, query string, limit int) ([]types.DocumentRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	var rows *sql.Rows
	var err error
	if s.fts {
		rows, err = s.db.QueryContext(ctx,
			`SELECT d.id, d.owner, d.filename, d.markdown, d.score, d.details, d.created_at
			 FROM documents_fts
			 JOIN documents d ON d.rowid = documents_fts.rowid
			 WHERE documents_fts MATCH ? AND d.owner = ?
			 ORDER BY documents_fts.rank LIMIT ?`, query, owner, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, owner, filename, markdown, score, details, created_at
			 FROM documents
			 WHERE owner = ? AND markdown LIKE '%' || ? || '%'
			 ORDER BY created_at DESC LIMIT ?`, owner, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Delete removes a document by ID, scoped to the owner. Deleting a missing
// document is an error so callers can distinguish it from success.
func (s *Store) Delete(ctx context.Context, id, owner string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("document %s not found", id)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*types.DocumentRecord, error) {
	var rec types.DocumentRecord
	var createdAt string
	var details sql.NullString

	if err := row.Scan(&rec.ID, &rec.Owner, &rec.Filename, &rec.Markdown,
		&rec.Score, &details, &createdAt); err != nil {
		return nil, err
	}

	rec.Details = details.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]types.DocumentRecord, error) {
	var records []types.DocumentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
