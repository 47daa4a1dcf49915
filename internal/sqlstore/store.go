// Package sqlstore implements the property store on SQLite. It backs
// hermetic tests through the :memory: DSN and serves as the CLI backend
// when no git repository is available.
package sqlstore

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/greened/git-project/pkg/types"
)

// Schema DDL. One row per (section, key, value); the UNIQUE constraint
// makes Add idempotent at the storage layer.
const schemaSQL = `CREATE TABLE IF NOT EXISTS properties (
    id TEXT PRIMARY KEY,
    section TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    UNIQUE(section, key, value)
);
CREATE INDEX IF NOT EXISTS idx_properties_section ON properties(section);`

var _ types.Store = (*Store)(nil)

// Store is a SQLite-backed property store.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens the database at dsn (":memory:" for an in-memory store) and
// ensures the schema exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storeErr("open database", err)
	}
	// One connection keeps :memory: databases coherent and serializes
	// writers on file databases.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, storeErr("initialize schema", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return storeErr("close database", err)
	}
	return nil
}

// HasRepo reports whether the store is open. An open sqlstore always acts
// as an attached backing store.
func (s *Store) HasRepo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db != nil
}

// GetSection returns a handle for path when it holds at least one value,
// nil otherwise.
func (s *Store) GetSection(path string) (types.Section, error) {
	if !s.HasRepo() {
		return nil, nil
	}
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM properties WHERE section = ?`, path).Scan(&n)
	if err != nil {
		return nil, storeErr("query section", err)
	}
	if n == 0 {
		return nil, nil
	}
	return &section{store: s, path: path}, nil
}

// OpenSection returns a handle for path, creating the section on first
// write.
func (s *Store) OpenSection(path string) (types.Section, error) {
	if !s.HasRepo() {
		return nil, fmt.Errorf("open section %s: %w", path, types.ErrNoRepo)
	}
	return &section{store: s, path: path}, nil
}

// newID generates a UUID v7 row id, falling back to v4 when v7 generation
// fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// storeErr wraps a backend failure so callers can match types.ErrStore.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, types.ErrStore, err)
}
