// Package sqlite implements C9: a relational cache for statements and
// crawl rows, atomic upsert by natural key (spec.md §4.9).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	_ "modernc.org/sqlite"
)

// DB manages the SQLite connection pool, pragma configuration, and
// schema migration-on-open.
type DB struct {
	db     *sql.DB
	logger arbor.ILogger
}

// Config configures the connection pool and file location.
type Config struct {
	Path         string
	MaxOpenConns int
}

// Open opens (creating if absent) the database at cfg.Path, applies
// pragmas, and runs the schema migration.
func Open(logger arbor.ILogger, cfg Config) (*DB, error) {
	if cfg.Path != ":memory:" {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)

	d := &DB{db: sqlDB, logger: logger}
	if err := d.configure(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sqlite: configure database: %w", err)
	}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sqlite: run migrations: %w", err)
	}

	logger.Info().Str("path", cfg.Path).Int("max_open_conns", maxOpen).Msg("sqlite: database initialized")
	return d, nil
}

func (d *DB) configure() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

func (d *DB) migrate() error {
	_, err := d.db.Exec(schemaSQL)
	return err
}

func (d *DB) DB() *sql.DB { return d.db }

func (d *DB) Close() error { return d.db.Close() }

func (d *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return d.db.BeginTx(ctx, nil)
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}
