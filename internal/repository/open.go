// Package repository selects and opens the configured document store.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"journal/internal/config"
	"journal/internal/domain/repositories"
	journalRepo "journal/internal/domain/repositories/journal"
	"journal/internal/repository/postgres"
	postgresJournal "journal/internal/repository/postgres/journal"
	"journal/internal/repository/sqlite"
)

// Stores is an opened storage backend.
type Stores struct {
	Documents journalRepo.DocumentRepository
	TxManager repositories.TransactionManager
	Backend   string

	close func()
}

// Close releases the backend's connections.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the backend named by cfg.Store and ensures its schema.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	switch cfg.Store {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repo := postgresJournal.NewDocumentRepository(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		})
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database connected", "store", "postgres", "table_prefix", cfg.TablePrefix)
		return &Stores{
			Documents: repo,
			TxManager: postgres.NewTransactionManager(pool, logger),
			Backend:   "postgres",
			close:     pool.Close,
		}, nil

	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		repo := sqlite.NewDocumentRepository(db, cfg.TablePrefix, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("database opened", "store", "sqlite", "path", cfg.SQLitePath)
		return &Stores{
			Documents: repo,
			TxManager: sqlite.NewTransactionManager(db, logger),
			Backend:   "sqlite",
			close:     func() { db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE %q (want postgres or sqlite)", cfg.Store)
	}
}
