// Package store provides the SQLite-backed clipboard history.
//
// Three tables hold the event → item → typed-payload hierarchy, linked by
// foreign keys with ON DELETE CASCADE. Each insert runs in one IMMEDIATE
// transaction that first checks the content hash, so a duplicate leaves the
// database untouched and a failure half way leaves prior history intact.
// Retention pruning runs after the commit and is not part of it.
//
// # Database configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//   - one pooled connection; write transactions take the lock up front so two
//     processes sharing a file serialize their inserts
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"go.klb.dev/pastestack/internal/history"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - events/items/types with content_hash
const currentSchemaVersion = 1

const (
	// DriverCGO is the mattn/go-sqlite3 driver.
	DriverCGO = "sqlite3"
	// DriverPure is the modernc.org/sqlite driver, no cgo required.
	DriverPure = "sqlite"

	// DefaultMaxRetained is the number of events kept by default.
	DefaultMaxRetained = 100
)

// Store is the durable, capacity-bounded clipboard history.
type Store struct {
	db          *sql.DB
	driver      string
	maxRetained int
}

// Option configures a Store.
type Option func(*Store)

// WithMaxRetained sets how many events survive pruning. Values <= 0 select
// DefaultMaxRetained.
func WithMaxRetained(n int) Option {
	return func(s *Store) {
		if n <= 0 {
			n = DefaultMaxRetained
		}
		s.maxRetained = n
	}
}

// WithDriver selects the database/sql driver, DriverCGO or DriverPure.
func WithDriver(name string) Option {
	return func(s *Store) { s.driver = name }
}

// DefaultPath returns the default database location inside the user cache
// directory, falling back to the system temp dir.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "pastestack", "clipboard.db")
}

// Open creates or opens the history database at path, creating its parent
// directory if needed. Safe to call repeatedly on the same file.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{driver: DriverCGO, maxRetained: DefaultMaxRetained}
	for _, o := range opts {
		o(s)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &history.StorageError{Op: "create directory", Err: err}
		}
	}

	dsn, err := dataSourceName(s.driver, path)
	if err != nil {
		return nil, &history.StorageError{Op: "open", Err: err}
	}

	db, err := sql.Open(s.driver, dsn)
	if err != nil {
		return nil, &history.StorageError{Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &history.StorageError{Op: "connect", Err: err}
	}

	// SQLite has a single writer; one connection also keeps the per-connection
	// pragmas in force for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, &history.StorageError{Op: "pragmas", Err: err}
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, &history.StorageError{Op: "schema", Err: err}
	}

	s.db = db
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// MaxRetained returns the retention capacity.
func (s *Store) MaxRetained() int { return s.maxRetained }

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string { return s.driver }

// dataSourceName builds a file: URI carrying the per-connection settings in the
// parameter syntax each driver understands.
func dataSourceName(driver, path string) (string, error) {
	q := url.Values{}
	switch driver {
	case DriverCGO:
		q.Set("_foreign_keys", "on")
		q.Set("_busy_timeout", "5000")
		q.Set("_journal_mode", "WAL")
	case DriverPure:
		q.Add("_pragma", "foreign_keys(1)")
		q.Add("_pragma", "busy_timeout(5000)")
		q.Add("_pragma", "journal_mode(WAL)")
	default:
		return "", fmt.Errorf("unknown sqlite driver %q", driver)
	}
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode(), nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and stamps user_version.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
