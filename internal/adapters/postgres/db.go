package postgres

import (
	"CivicPulse/internal/core/ports"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// querier is satisfied by both the pool and an open transaction, so
// repositories run unchanged inside RunInTx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB holds the connection pool.
type DB struct {
	pool *pgxpool.Pool
	sec  ports.SecurityPort
	log  zerolog.Logger
}

var _ ports.UnitOfWork = (*DB)(nil)

// NewDB creates and tests a new database connection. sec encrypts
// sensitive report columns.
func NewDB(ctx context.Context, connString string, sec ports.SecurityPort, baseLogger *zerolog.Logger) (*DB, error) {
	log := baseLogger.With().Str("component", "postgres").Logger()

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse DB connection string")
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create connection pool")
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to ping database")
		pool.Close()
		return nil, err
	}

	log.Info().Msg("Database connection pool established")
	return &DB{pool: pool, sec: sec, log: log}, nil
}

// Close gracefully closes the connection pool.
func (db *DB) Close() {
	db.log.Info().Msg("Closing database connection pool")
	db.pool.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// RunInTx runs fn in a single transaction. Rows read through
// Reports().GetByIDForUpdate stay locked until it commits or rolls back.
func (db *DB) RunInTx(ctx context.Context, fn func(tx ports.TxStores) error) error {
	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		return fn(&txStores{
			reports: &reportRepository{q: tx, sec: db.sec, log: db.log.With().Str("repo", "reports").Logger()},
			notes:   &notificationRepository{q: tx, log: db.log.With().Str("repo", "notifications").Logger()},
		})
	})
}

type txStores struct {
	reports *reportRepository
	notes   *notificationRepository
}

func (t *txStores) Reports() ports.ReportRepository       { return t.reports }
func (t *txStores) Notifications() ports.NotificationSink { return t.notes }

// Migrate applies every embedded migration that has not run yet, in file
// name order, each in its own transaction.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return err
		}
		applied := false
		err = pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx,
				`INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return nil
			}
			if _, err := tx.Exec(ctx, string(body)); err != nil {
				return err
			}
			applied = true
			return nil
		})
		if err != nil {
			db.log.Error().Err(err).Str("migration", name).Msg("Migration failed")
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if applied {
			db.log.Info().Str("migration", name).Msg("Migration applied")
		}
	}
	return nil
}
