package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/mattn/go-sqlite3"

	"hollywoo/internal/metrics"
)

// DefaultBusyTimeout bounds how long a connection waits on a locked database
const DefaultBusyTimeout = 5 * time.Second

// DB is a handle to one index file. It is safe for concurrent use; SQLite
// serializes writers.
type DB struct {
	db          *sql.DB
	path        string
	busyTimeout time.Duration
	logger      zerolog.Logger
	metrics     *metrics.Metrics

	initMu      sync.Mutex
	initialized bool
}

// Option configures a DB
type Option func(*DB)

// WithLogger sets the logger used for store warnings
func WithLogger(logger zerolog.Logger) Option {
	return func(d *DB) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics the store reports to
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *DB) {
		d.metrics = m
	}
}

// WithBusyTimeout overrides DefaultBusyTimeout
func WithBusyTimeout(timeout time.Duration) Option {
	return func(d *DB) {
		if timeout > 0 {
			d.busyTimeout = timeout
		}
	}
}

// DSN builds the go-sqlite3 connection string for path
func DSN(path string, busyTimeout time.Duration) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_foreign_keys", "on")
	params.Set("_locking_mode", "NORMAL")
	params.Set("_busy_timeout", fmt.Sprintf("%d", busyTimeout.Milliseconds()))
	params.Set("_txlock", "immediate")
	return "file:" + path + "?" + params.Encode()
}

// Open opens the index at path, creating the schema if the file is new.
// The returned handle is ready for use; on error no handle is returned.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	d := newDB(path, opts...)

	sqlDB, err := sql.Open("sqlite3", DSN(path, d.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	d.db = sqlDB

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}

	if err := d.init(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return d, nil
}

func newDB(path string, opts ...Option) *DB {
	d := &DB{
		path:        path,
		busyTimeout: DefaultBusyTimeout,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// init creates the schema once per handle. The check and the DDL share one
// IMMEDIATE transaction, so two processes opening a fresh file serialize on
// the SQLite write lock.
func (d *DB) init(ctx context.Context) error {
	d.initMu.Lock()
	defer d.initMu.Unlock()

	if d.initialized {
		return nil
	}

	err := d.WithTx(ctx, func(s *Store) error {
		var n int
		row := s.q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'folder'")
		if err := row.Scan(&n); err != nil {
			return fmt.Errorf("failed to inspect schema: %w", err)
		}
		if n > 0 {
			return nil
		}

		d.logger.Info().Str("path", d.path).Msg("Creating database schema")
		if _, err := s.q.ExecContext(ctx, Schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.initialized = true
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

// Ping checks that the database file is reachable
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Store returns a store that runs every statement in its own transaction
func (d *DB) Store() *Store {
	return &Store{q: d.db, db: d}
}

// WithTx runs fn inside one transaction. The transaction commits if fn
// returns nil and rolls back otherwise, including when fn panics; the panic
// is re-raised after the rollback.
func (d *DB) WithTx(ctx context.Context, fn func(*Store) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			d.logger.Error().Err(rbErr).Msg("Failed to roll back transaction")
		}
	}()

	if err := fn(&Store{q: tx, db: d}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}
