// Package pgx stores the whole application in PostgreSQL.
package pgx

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is satisfied by *pgxpool.Pool and pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Adapter struct {
	db DB
}

var _ core.StorageAdapter = (*Adapter)(nil)

func New(db DB) *Adapter {
	return &Adapter{db: db}
}

// Connect opens a pool for dsn and applies the embedded migrations.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgx: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgx: ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := migrate.Up(ctx, db, migrationsFS, "migrations", "postgres"); err != nil {
		return fmt.Errorf("pgx: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// notFound maps pgx.ErrNoRows to target and passes other errors through.
func notFound(err, target error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return target
	}
	return err
}

// affected returns target when a write touched no rows.
func affected(tag pgconn.CommandTag, err, target error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return target
	}
	return nil
}
