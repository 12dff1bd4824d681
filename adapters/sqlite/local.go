// Package sqlite keeps client-side state, and the whole application when no
// server database is configured, in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ core.LocalStorage = (*LocalStorage)(nil)

type LocalStorage struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string) (*LocalStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// One connection, so ":memory:" is a single database and writes never
	// contend for the file lock.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy timeout: %w", err)
	}
	if err := migrate.Up(ctx, db, migrationsFS, "migrations", "sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return &LocalStorage{db: db}, nil
}

func (l *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := l.db.QueryRowContext(ctx, `SELECT value FROM local_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (l *LocalStorage) Set(ctx context.Context, key string, value []byte) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO local_store (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM local_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Store returns the application store kept in the same file.
func (l *LocalStorage) Store() *Store {
	return &Store{db: l.db}
}

func (l *LocalStorage) Close() error {
	return l.db.Close()
}

func isUniqueViolation(err error) bool {
	var se *moderncsqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// notFound maps sql.ErrNoRows to target and passes other errors through.
func notFound(err, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}

// affected returns target when a write touched no rows.
func affected(res sql.Result, err, target error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return target
	}
	return nil
}
