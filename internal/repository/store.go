// Package repository opens the configured namespace store backend.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cirrus/internal/config"
	"cirrus/internal/domain/repositories"
	nsRepo "cirrus/internal/domain/repositories/namespace"
	"cirrus/internal/repository/postgres"
	"cirrus/internal/repository/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store bundles the repositories of one backend with its maintenance hooks
type Store struct {
	Driver    string
	Folders   nsRepo.FolderRepository
	Files     nsRepo.FileRepository
	TxManager repositories.TransactionManager

	Ping         func(ctx context.Context) error
	EnsureSchema func(ctx context.Context) error
	DropTables   func(ctx context.Context) error
	ClearOwner   func(ctx context.Context, ownerID uuid.UUID) error
	Close        func()
}

// Open connects to the backend named by cfg.DatabaseDriver
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return newPostgresStore(pool, postgres.NewTableNames(cfg.TablePrefix), logger), nil
	case DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return newSQLiteStore(db, sqlite.NewTableNames(cfg.TablePrefix), logger), nil
	default:
		return nil, fmt.Errorf("unknown DATABASE_DRIVER %q (want %q or %q)", cfg.DatabaseDriver, DriverPostgres, DriverSQLite)
	}
}

func newPostgresStore(pool *pgxpool.Pool, tables *postgres.TableNames, logger *slog.Logger) *Store {
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	return &Store{
		Driver:       DriverPostgres,
		Folders:      postgres.NewFolderRepository(repoConfig),
		Files:        postgres.NewFileRepository(repoConfig),
		TxManager:    postgres.NewTransactionManager(pool, logger),
		Ping:         pool.Ping,
		EnsureSchema: func(ctx context.Context) error { return postgres.EnsureSchema(ctx, pool, tables) },
		DropTables:   func(ctx context.Context) error { return postgres.DropTables(ctx, pool, tables) },
		ClearOwner: func(ctx context.Context, ownerID uuid.UUID) error {
			return postgres.ClearOwner(ctx, pool, tables, ownerID)
		},
		Close: pool.Close,
	}
}

func newSQLiteStore(db *sql.DB, tables *sqlite.TableNames, logger *slog.Logger) *Store {
	repoConfig := &sqlite.RepositoryConfig{
		DB:     db,
		Tables: tables,
		Logger: logger,
	}
	return &Store{
		Driver:       DriverSQLite,
		Folders:      sqlite.NewFolderRepository(repoConfig),
		Files:        sqlite.NewFileRepository(repoConfig),
		TxManager:    sqlite.NewTransactionManager(db, logger),
		Ping:         db.PingContext,
		EnsureSchema: func(ctx context.Context) error { return sqlite.EnsureSchema(ctx, db, tables) },
		DropTables:   func(ctx context.Context) error { return sqlite.DropTables(ctx, db, tables) },
		ClearOwner: func(ctx context.Context, ownerID uuid.UUID) error {
			return sqlite.ClearOwner(ctx, db, tables, ownerID)
		},
		Close: func() { db.Close() },
	}
}
