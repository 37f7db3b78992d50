package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"journal/internal/config"
	"journal/internal/domain"
	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/outline"
	"journal/internal/repository"
	serviceJournal "journal/internal/service/journal"

	"github.com/joho/godotenv"
)

// seedDocumentID is fixed so that re-running the seeder replaces the sample.
const seedDocumentID = "sample-journal"

func main() {
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed documents")
	replace := flag.Bool("replace", false, "Delete the sample document first if it exists")
	userID := flag.String("user", "", "Owner of the sample document (default DEV_USER_ID)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Environment == "prod" && *replace {
		log.Fatalf("BLOCKED: cannot run destructive operations (--replace) in production environment")
	}
	if *userID == "" {
		*userID = cfg.DevUserID
	}

	logger := config.NewLogger(os.Stdout, cfg.Environment)
	log.Printf("Seeding %s store (environment: %s, prefix: %s)", cfg.Store, cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	stores, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer stores.Close()
	log.Println("Schema ready")

	if *schemaOnly {
		return
	}

	editor := serviceJournal.NewEditor(stores.Documents, nil, outline.UUIDGenerator{}, logger)
	docService := serviceJournal.NewDocumentService(editor, stores.TxManager)

	if *replace {
		err := docService.DeleteDocument(ctx, *userID, seedDocumentID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			log.Fatalf("Failed to delete sample document: %v", err)
		}
	}

	doc, err := docService.CreateDocument(ctx, &journalSvc.CreateDocumentRequest{
		UserID:  *userID,
		ID:      seedDocumentID,
		Title:   "Sample journal",
		Content: sampleContent,
	})
	if errors.Is(err, domain.ErrConflict) {
		log.Printf("Sample document already exists (use --replace to recreate)")
		return
	}
	if err != nil {
		log.Fatalf("Failed to create sample document: %v", err)
	}

	log.Printf("Created %q (ID: %s, bullets: %d, words: %d)", doc.Title, doc.ID, doc.Stats.Bullets, doc.Stats.Words)
}

// sampleContent is a small outline in the stored content layout.
const sampleContent = `{
  "bullets": [
    {"id": "morning", "content": "<b>Morning</b>", "level": 0, "isCollapsed": false, "children": [
      {"id": "morning-run", "content": "Ran 5k along the river", "level": 1, "children": []},
      {"id": "morning-coffee", "content": "Coffee with <i>Sam</i>", "level": 1, "children": []}
    ]},
    {"id": "work", "content": "<b>Work</b>", "level": 0, "isCollapsed": true, "children": [
      {"id": "work-review", "content": "Design review", "level": 1, "children": [
        {"id": "work-review-notes", "content": "Ship the outline export first", "level": 2, "children": []}
      ]}
    ]},
    {"id": "evening", "content": "<b>Evening</b>", "level": 0, "children": []}
  ],
  "images": [],
  "videos": []
}`
