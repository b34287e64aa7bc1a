// Package storage is hackfinder's local search backend: a SQLite database
// holding the hacks, their categories and an FTS5 full-text index over
// them.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/rubiojr/hackfinder/pkg/db"
	"github.com/rubiojr/hackfinder/pkg/log"
	"github.com/rubiojr/hackfinder/pkg/search"
)

// ErrNotFound is returned when a hack ID is not in the index.
var ErrNotFound = errors.New("hack not found")

var (
	_ search.Backend        = (*Index)(nil)
	_ search.CategoryLister = (*Index)(nil)
	_ search.SimilarFinder  = (*Index)(nil)
)

// Index is an open hacks database.
type Index struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// Open opens (creating if needed) the index at path and migrates it to the
// current schema.
func Open(path string) (*Index, error) {
	idx, err := OpenWithoutMigrations(path)
	if err != nil {
		return nil, err
	}
	if err := db.InitializeDatabase(idx.db); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("migrating index %s: %w", path, err)
	}
	return idx, nil
}

// OpenWithoutMigrations opens the index leaving the schema alone. The
// migrate command uses it to report status before applying anything.
func OpenWithoutMigrations(path string) (*Index, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = memory",
		"PRAGMA mmap_size = 268435456", // 256MB mmap
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	logger := log.ForService("storage")
	logger.Debugf("opened index %s", path)
	return &Index{db: conn, path: path, logger: logger}, nil
}

// Close closes the database.
func (i *Index) Close() error {
	return i.db.Close()
}

// DB returns the underlying connection, for migrations.
func (i *Index) DB() *sql.DB {
	return i.db
}

// Path returns the database file path.
func (i *Index) Path() string {
	return i.path
}

// Optimize runs SQLite's query planner maintenance and merges the FTS
// index segments.
func (i *Index) Optimize(ctx context.Context) error {
	statements := []string{
		"INSERT INTO hacks_fts(hacks_fts) VALUES ('optimize')",
		"PRAGMA optimize",
		"ANALYZE",
		"PRAGMA wal_checkpoint(TRUNCATE)",
	}
	for _, stmt := range statements {
		if _, err := i.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("running %q: %w", stmt, err)
		}
	}
	return nil
}

// Vacuum rebuilds the database file.
func (i *Index) Vacuum(ctx context.Context) error {
	_, err := i.db.ExecContext(ctx, "VACUUM")
	return err
}
