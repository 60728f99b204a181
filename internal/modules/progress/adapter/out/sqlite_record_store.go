package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"progresscard/internal/modules/progress/domain"
	apperrors "progresscard/internal/platform/errors"
)

// SQLiteRecordStore keeps documents as JSON bodies keyed by (collection, id).
type SQLiteRecordStore struct {
	db *sql.DB
}

func NewSQLiteRecordStore(dbPath string) (*SQLiteRecordStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteRecordStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteRecordStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
  collection TEXT NOT NULL,
  id TEXT NOT NULL,
  body TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (collection, id)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create documents table: %w", classify(err))
	}
	return nil
}

func (s *SQLiteRecordStore) GetDocument(ctx context.Context, collection, id string) (domain.Document, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query document: %w", classify(err))
	}
	doc := domain.Document{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, false, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	return doc, true, nil
}

func (s *SQLiteRecordStore) PutDocument(ctx context.Context, collection, id string, doc domain.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}
	const stmt = `
INSERT INTO documents (collection, id, body, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(collection, id) DO UPDATE SET
  body=excluded.body,
  updated_at=excluded.updated_at;
`
	if _, err := s.db.ExecContext(ctx, stmt, collection, id, string(body), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("upsert document: %w", classify(err))
	}
	return nil
}

func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

// classify marks lock contention as transient so callers retry it.
func classify(err error) error {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return errors.Join(apperrors.ErrUnavailable, err)
		}
	}
	return err
}
