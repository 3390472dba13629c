package study

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fahadakmal/chartstudy/src/tabular"
)

// ErrNotFound is returned when no document exists for the given id.
var ErrNotFound = errors.New("chartstudy: not found")

// Store is the local document store: sessions and cached tabular files are
// kept as JSON documents keyed by id. It stands in for the hosted document
// database the deployed instrument syncs to.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the store under dataDir. An empty dataDir defaults
// to ~/.chartstudy/data.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".chartstudy", "data")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "study.db")

	// WAL keeps the HTTP shell responsive while exports read.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			doc        TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS files (
			id         TEXT PRIMARY KEY,
			doc        TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

func (s *Store) putDoc(ctx context.Context, table, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", table, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, doc, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = CURRENT_TIMESTAMP`, table),
		id, string(raw))
	if err != nil {
		return fmt.Errorf("writing %s %s: %w", table, id, err)
	}
	return nil
}

func (s *Store) getDoc(ctx context.Context, table, id string, out any) error {
	var raw string
	row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT doc FROM %s WHERE id = ?", table), id)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("reading %s %s: %w", table, id, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", table, id, err)
	}
	return nil
}

func (s *Store) deleteDoc(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", table, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) listDocs(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT doc FROM %s ORDER BY updated_at, id", table))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()
	var docs []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		docs = append(docs, raw)
	}
	return docs, rows.Err()
}

// PutSession upserts a session document.
func (s *Store) PutSession(ctx context.Context, sess *Session) error {
	return s.putDoc(ctx, "sessions", sess.ID, sess)
}

// GetSession loads one session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	if err := s.getDoc(ctx, "sessions", id, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// ListSessions returns all sessions, oldest write first.
func (s *Store) ListSessions(ctx context.Context) ([]*Session, error) {
	docs, err := s.listDocs(ctx, "sessions")
	if err != nil {
		return nil, err
	}
	out := make([]*Session, 0, len(docs))
	for _, raw := range docs {
		var sess Session
		if err := json.Unmarshal([]byte(raw), &sess); err != nil {
			return nil, fmt.Errorf("decoding session: %w", err)
		}
		out = append(out, &sess)
	}
	return out, nil
}

// DeleteSession removes one session by id.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, "sessions", id)
}

// PutFile caches a loaded tabular file (metadata, rows, axes, styles) so a
// reloaded instrument can restore its working set.
func (s *Store) PutFile(ctx context.Context, f *tabular.File) error {
	return s.putDoc(ctx, "files", f.ID, f)
}

// GetFile loads one cached file by id.
func (s *Store) GetFile(ctx context.Context, id string) (*tabular.File, error) {
	var f tabular.File
	if err := s.getDoc(ctx, "files", id, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFiles returns all cached files, oldest write first.
func (s *Store) ListFiles(ctx context.Context) ([]*tabular.File, error) {
	docs, err := s.listDocs(ctx, "files")
	if err != nil {
		return nil, err
	}
	out := make([]*tabular.File, 0, len(docs))
	for _, raw := range docs {
		var f tabular.File
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return nil, fmt.Errorf("decoding file: %w", err)
		}
		out = append(out, &f)
	}
	return out, nil
}

// DeleteFile removes one cached file by id.
func (s *Store) DeleteFile(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, "files", id)
}
