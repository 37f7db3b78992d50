package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"journal/internal/config"
	"journal/internal/repository/postgres"
	"journal/internal/repository/sqlite"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Environment == "prod" {
		log.Fatal("BLOCKED: refusing to drop tables in production environment")
	}

	table := postgres.NewTableNames(cfg.TablePrefix).Documents
	ctx := context.Background()

	switch cfg.Store {
	case "postgres":
		if cfg.DatabaseURL == "" {
			log.Fatal("DATABASE_URL environment variable is required")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()

		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath, config.NewLogger(os.Stderr, cfg.Environment))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer func() { _ = db.Close() }() // Error ignored: script exiting

		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	default:
		log.Fatalf("Unknown store %q", cfg.Store)
	}

	fmt.Printf("Journal tables dropped (store: %s, prefix: %s)\n", cfg.Store, cfg.TablePrefix)
}
