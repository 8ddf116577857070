package sqlite

import (
	"context"
	"fmt"

	"github.com/VTGare/magpie/store"
	"github.com/VTGare/magpie/store/sqlite/migrations"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DB implements store.Store on top of a single SQLite file. The connection
// is process-wide: opened once at startup and shared by every handler.
type DB struct {
	db   *sqlx.DB
	path string
}

var _ store.Store = (*DB)(nil)

// New opens and configures a SQLite database. path can be a file path or
// ":memory:" for an in-memory database.
func New(path string) (*DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Every pooled connection to :memory: is its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Foreign keys are off by default for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Wait for locks instead of failing; handlers for different channels
	// may upsert concurrently.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{db: db, path: path}, nil
}

// Init brings the schema to the latest version.
func (db *DB) Init(ctx context.Context) error {
	if err := migrations.Up(db.db.DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.db.Close()
}
