package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the SQLite connection backing a mount.
type Store struct {
	db      *sql.DB
	queries *Queries
}

// Open opens or creates a SQLite database at dbPath and ensures the
// folders/notes schema exists. Unlike a disposable API cache, this
// database holds the user's only copy of their notes, so a schema
// mismatch is reported rather than silently deleted and recreated.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	escapedPath := strings.ReplaceAll(dbPath, " ", "%20")
	connStr := "file:" + escapedPath + "?_time_format=sqlite"
	sqlDB, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{
		db:      sqlDB,
		queries: New(sqlDB),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Queries returns the typed query layer bound to the plain
// connection.
func (s *Store) Queries() *Queries {
	return s.queries
}

// DB returns the underlying connection for raw queries, e.g. test
// fixture setup.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn inside a transaction, committing on success and
// rolling back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

// Now returns the current time as whole seconds since the epoch, the
// resolution the schema's *_time columns store.
func Now() int64 {
	return time.Now().Unix()
}

// DefaultDBPath returns the default store location under the user's
// config directory.
func DefaultDBPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.Getenv("HOME")
	}
	return filepath.Join(configDir, "sqlite-fuse", "notes.db")
}
