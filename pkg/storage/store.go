// Package storage persists documents in a single SQLite database and hands
// the search engine an immutable snapshot per query.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rubiojr/docsearch/pkg/content"
	"github.com/rubiojr/docsearch/pkg/db"
	"github.com/rubiojr/docsearch/pkg/log"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
}

type Store struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// Open opens (creating if needed) the database at dbPath and applies pending
// migrations.
func Open(dbPath string) (*Store, error) {
	s, err := OpenWithoutMigrations(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.InitializeDatabase(s.db); err != nil {
		s.db.Close()
		return nil, err
	}
	return s, nil
}

// OpenWithoutMigrations opens the database without touching its schema. It is
// meant for inspecting migration status; queries may fail on an old schema.
func OpenWithoutMigrations(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000", // 64MB
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	return &Store{db: conn, path: dbPath, logger: log.ForService("storage")}, nil
}

// Migrations returns a migration manager bound to the store's database.
func (s *Store) Migrations() *db.MigrationManager {
	return db.NewMigrationManager(s.db)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

const selectColumns = `SELECT id, type, slug, title, raw_body, excerpt, published_at, visibility, path FROM documents`

// Documents returns every stored document ordered by id. Each call reads a
// fresh snapshot; callers may keep the slice for the lifetime of one query.
func (s *Store) Documents(ctx context.Context) ([]content.Document, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warnf("failed to close rows: %v", err)
		}
	}()

	var docs []content.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Get loads a single document by id.
func (s *Store) Get(ctx context.Context, id string) (content.Document, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Document{}, ErrNotFound
	}
	return doc, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(r scanner) (content.Document, error) {
	var doc content.Document
	var publishedAt sql.NullString
	var visibility string

	err := r.Scan(&doc.ID, &doc.Type, &doc.Slug, &doc.Title, &doc.RawBody, &doc.Excerpt, &publishedAt, &visibility, &doc.Path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return doc, err
		}
		return doc, fmt.Errorf("scanning document: %w", err)
	}

	doc.Visibility = content.Visibility(visibility)
	if publishedAt.Valid && publishedAt.String != "" {
		t, err := parseTimestamp(publishedAt.String)
		if err != nil {
			return doc, fmt.Errorf("parsing published_at for %s: %w", doc.ID, err)
		}
		doc.PublishedAt = &t
	}
	return doc, nil
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func formatTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Upsert inserts or replaces documents in a single transaction.
func (s *Store) Upsert(ctx context.Context, docs ...content.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return upsertTx(ctx, tx, docs)
	})
}

func upsertTx(ctx context.Context, tx *sql.Tx, docs []content.Document) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO documents (id, type, slug, title, raw_body, excerpt, published_at, visibility, path, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, d := range docs {
		vis := d.Visibility
		if vis == "" {
			vis = content.Published
		}
		_, err := stmt.ExecContext(ctx, d.ID, d.Type, d.Slug, d.Title, d.RawBody, d.Excerpt,
			formatTimestamp(d.PublishedAt), string(vis), d.Path, now)
		if err != nil {
			return fmt.Errorf("storing document %s: %w", d.ID, err)
		}
	}
	return nil
}

// SyncResult reports what a Sync changed.
type SyncResult struct {
	Stored  int
	Removed int
}

// Sync makes the stored set equal to docs: every document is upserted and
// rows whose id is not in docs are deleted.
func (s *Store) Sync(ctx context.Context, docs []content.Document) (SyncResult, error) {
	var res SyncResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `CREATE TEMP TABLE IF NOT EXISTS sync_ids (id TEXT PRIMARY KEY)`); err != nil {
			return fmt.Errorf("creating sync table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sync_ids`); err != nil {
			return fmt.Errorf("clearing sync table: %w", err)
		}
		for _, d := range docs {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO sync_ids (id) VALUES (?)`, d.ID); err != nil {
				return fmt.Errorf("recording sync id %s: %w", d.ID, err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id NOT IN (SELECT id FROM sync_ids)`)
		if err != nil {
			return fmt.Errorf("removing stale documents: %w", err)
		}
		removed, err := result.RowsAffected()
		if err != nil {
			return err
		}
		res.Removed = int(removed)

		if err := upsertTx(ctx, tx, docs); err != nil {
			return err
		}
		res.Stored = len(docs)

		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO import_metadata (key, value, updated_at)
			VALUES ('last_import', ?, CURRENT_TIMESTAMP)
		`, time.Now().UTC().Format(time.RFC3339Nano))
		return err
	})
	if err != nil {
		return SyncResult{}, err
	}

	s.logger.Debugf("sync stored %d, removed %d", res.Stored, res.Removed)
	return res, nil
}

// Delete removes a document by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// LastImport returns when Sync last completed, or the zero time.
func (s *Store) LastImport(ctx context.Context) (time.Time, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM import_metadata WHERE key = 'last_import'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return parseTimestamp(value)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				s.logger.Warnf("failed to rollback transaction: %v", err)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	committed = true
	return nil
}
