package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"journal/internal/config"
	models "journal/internal/domain/models/journal"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{Store: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "j.db"), TablePrefix: "test_"}
	stores, err := Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer stores.Close()

	if stores.Backend != "sqlite" {
		t.Errorf("backend = %q", stores.Backend)
	}
	doc := &models.Document{ID: "d1", UserID: "u1", Title: "T", Content: `{"bullets":[]}`}
	if err := stores.Documents.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := stores.Documents.Get(context.Background(), "d1", "u1"); err != nil {
		t.Errorf("Get: %v", err)
	}
}

func TestOpenRejectsUnknownStore(t *testing.T) {
	tests := []*config.Config{
		{Store: "mongo"},
		{Store: "postgres"},
	}
	for _, cfg := range tests {
		t.Run(cfg.Store, func(t *testing.T) {
			if _, err := Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
				t.Error("expected error")
			}
		})
	}
}
