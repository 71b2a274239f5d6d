package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/reqkey/internal/reqerr"
	"github.com/roach88/reqkey/internal/statement"
)

// Store runs rendered requests against a database.
type Store struct {
	db      *sqlx.DB
	builder statement.Builder
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBuilder sets the builder used for requests that carry none.
func WithBuilder(b statement.Builder) Option {
	return func(s *Store) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithLogger sets the logger for executed statements.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open connects to dsn with the named driver ("sqlite", "sqlite3",
// "postgres" or "postgresql").
//
// SQLite databases are configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//   - a single open connection
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	name, dialect, err := resolveDriver(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect.Name, err)
	}

	if name == "sqlite3" {
		// SQLite only supports one writer at a time
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	s, err := New(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection. Without WithBuilder, statements are
// rendered for the dialect matching db's driver; a driver with no known
// dialect is an InvalidArgument error.
func New(db *sqlx.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		_, dialect, err := resolveDriver(db.DriverName())
		if err != nil {
			return nil, fmt.Errorf("no statement dialect for driver %q, use WithBuilder: %w", db.DriverName(), err)
		}
		s.builder = statement.NewCache(statement.NewSQLBuilder(dialect), statement.WithLogger(s.logger))
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying connection.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// resolveDriver maps a driver alias to the registered database/sql driver
// name and its statement dialect.
func resolveDriver(driver string) (string, statement.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return "sqlite3", statement.SQLite, nil
	case "postgres", "postgresql", "pq":
		return "postgres", statement.Postgres, nil
	default:
		return "", statement.Dialect{}, reqerr.InvalidArgument("unsupported driver %q (use sqlite or postgres)", driver)
	}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
