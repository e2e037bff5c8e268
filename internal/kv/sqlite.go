package kv

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// BackendSQLite is the name of the SQLite backend.
const BackendSQLite = "sqlite"

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - kv table
const currentSchemaVersion = 1

// SQLite is a Store backed by a single SQLite table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, wrap(BackendSQLite, "open", fmt.Errorf("path is required"))
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, wrap(BackendSQLite, "open", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wrap(BackendSQLite, "open", fmt.Errorf("connect: %w", err))
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, wrap(BackendSQLite, "open", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, wrap(BackendSQLite, "open", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := checkArgs(ctx, key); err != nil {
		return nil, false, wrap(BackendSQLite, "get", err)
	}
	v, found, err := sqliteLookup(ctx, s.db, key)
	if err != nil {
		return nil, false, wrap(BackendSQLite, "get", err)
	}
	return v, found, nil
}

func (s *SQLite) Insert(ctx context.Context, key, value []byte) ([]byte, bool, error) {
	if err := checkArgs(ctx, key); err != nil {
		return nil, false, wrap(BackendSQLite, "insert", err)
	}
	var (
		prev    []byte
		existed bool
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		prev, existed, err = sqliteLookup(ctx, tx, key)
		if err != nil {
			return err
		}
		return upsert(ctx, tx, key, value)
	})
	if err != nil {
		return nil, false, wrap(BackendSQLite, "insert", err)
	}
	return prev, existed, nil
}

func (s *SQLite) ApplyBatch(ctx context.Context, batch *Batch) error {
	if err := checkArgs(ctx, batchKeys(batch)...); err != nil {
		return wrap(BackendSQLite, "apply_batch", err)
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, op := range batch.Ops() {
			if err := upsert(ctx, tx, op.Key, op.Value); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap(BackendSQLite, "apply_batch", err)
}

func (s *SQLite) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return wrap(BackendSQLite, "clear", err)
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv")
	return wrap(BackendSQLite, "clear", err)
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return wrap(BackendSQLite, "close", s.db.Close())
}

func (s *SQLite) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sqliteLookup(ctx context.Context, q queryRower, key []byte) ([]byte, bool, error) {
	var v []byte
	err := q.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return clone(v), true, nil
}

func upsert(ctx context.Context, tx *sql.Tx, key, value []byte) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, clone(value))
	return err
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. A database written by a newer build is refused.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// pragma returns the current value of a pragma. Used by tests.
func (s *SQLite) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return "", fmt.Errorf("query %s: %w", name, err)
	}
	return value, nil
}
