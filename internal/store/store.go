package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Maxsatbek/my-home/internal/kb"
	"github.com/Maxsatbek/my-home/internal/transfer"
)

//go:embed schema.sql
var schemaSQL string

//go:embed defaults.json
var bundledDefaults []byte

// DefaultKeep is the number of snapshots retained when no option overrides it.
const DefaultKeep = 20

// pragmas are applied on every Open. The log is written by one process at a
// time, so WAL plus a short busy timeout covers a second pkb reading while
// another saves.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// migrations[i] upgrades user_version i to i+1.
var migrations = []func(*sql.Tx) error{
	func(tx *sql.Tx) error {
		_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_snapshots_fingerprint ON snapshots(fingerprint)`)
		return err
	},
}

// Store is the SQLite-backed snapshot log.
type Store struct {
	db       *sql.DB
	clock    kb.Clock
	keep     int
	defaults []byte
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for saved_at stamps.
func WithClock(c kb.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithKeep sets how many snapshots are retained. Values below 1 are ignored.
func WithKeep(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.keep = n
		}
	}
}

// WithDefaults replaces the bundled default dataset with a JSON document.
// Open fails if the document is not an importable Database.
func WithDefaults(data []byte) Option {
	return func(s *Store) { s.defaults = data }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open creates or opens the snapshot log at path and brings its schema up
// to date. Opening the same file repeatedly is safe.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		clock:    kb.SystemClock{},
		keep:     DefaultKeep,
		defaults: bundledDefaults,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := transfer.DecodeJSON(s.defaults); err != nil {
		return nil, fmt.Errorf("invalid default dataset: %w", err)
	}

	db, err := connect(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	s.db = db
	s.logger.Debug("store opened", "path", path, "keep", s.keep)
	return s, nil
}

func connect(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection keeps pragmas and transactions on the same handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", path, err)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return db, nil
}

// migrate creates the table and applies pending migrations in one
// transaction.
func migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var version int
	if err := tx.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for v := version; v < len(migrations); v++ {
		if err := migrations[v](tx); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", len(migrations))); err != nil {
		return fmt.Errorf("write user_version: %w", err)
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// pragma reads the current value of a pragma.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}
