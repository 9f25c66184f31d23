package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"

	// Postgres driver for db.driver=postgres.
	_ "github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrSetNotFound is returned by set edits for an unknown set ID.
var ErrSetNotFound = errors.New("set not found")

// ErrQuestionNotFound is returned when a question ID matches no row.
var ErrQuestionNotFound = errors.New("question not found")

// Config selects the database backend.
type Config struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string

	// DSN is a sqlite file path or DSN, or a postgres connection string.
	DSN string

	Logger *slog.Logger
}

// Store is the persistence layer for sets, study state and events.
type Store struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
	logger  *slog.Logger
}

// Open connects to the configured database, applies pragmas (sqlite) and
// runs auto-migration.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		db     *sql.DB
		dia    string
		err    error
		sqlite bool
	)
	switch cfg.Driver {
	case "", "sqlite", "sqlite3":
		sqlite = true
		dia = dialect.SQLite
		db, err = sql.Open("sqlite", sqliteDSN(cfg.DSN))
	case "postgres", "postgresql":
		dia = dialect.Postgres
		db, err = sql.Open("postgres", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if sqlite {
		// One connection keeps per-connection pragmas in effect and
		// serializes writers.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	} else if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}

	s := &Store{db: db, dialect: dia, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.seq = seq

	logger.Debug("store opened", "driver", dia)
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// sqliteDSN turns a bare path into a file: DSN with foreign keys enabled,
// which the migrator checks for.
func sqliteDSN(dsn string) string {
	const fk = "_pragma=foreign_keys(1)"
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + fk
	}
	return dsn + "?" + fk
}

// DataDir resolves the application data directory in priority order:
// 1. $XDG_DATA_HOME/smartstudy
// 2. ~/.local/share/smartstudy
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "smartstudy"), nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. SMARTSTUDY_DB environment variable
// 2. $XDG_DATA_HOME/smartstudy/smartstudy.db
// 3. ~/.local/share/smartstudy/smartstudy.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("SMARTSTUDY_DB"); p != "" {
		return p, ensureDir(p)
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "smartstudy.db")
	return p, ensureDir(p)
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
