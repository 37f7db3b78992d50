package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"

	"journal/internal/cli"
	"journal/internal/config"
	"journal/internal/outline"
	"journal/internal/repository"
	serviceJournal "journal/internal/service/journal"
	"journal/internal/storage/media"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	// the terminal editor always works on the local database
	cfg.Store = "sqlite"

	logFile, err := config.SetupLogFile(cfg.LogDir, "journal", cfg.LogMaxFiles)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()
	logger := config.NewLogger(logFile, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	stores, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", cfg.SQLitePath, err)
	}
	defer stores.Close()

	mediaStore, err := media.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL, logger)
	if err != nil {
		log.Fatalf("Failed to open media directory: %v", err)
	}

	editor := serviceJournal.NewEditor(stores.Documents, mediaStore, outline.UUIDGenerator{}, logger)

	docService := serviceJournal.NewDocumentService(editor, stores.TxManager)
	exportService := serviceJournal.NewExportService(editor)

	historyFile := filepath.Join(cfg.LogDir, ".journal_history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "journal> ",
		HistoryFile:     historyFile,
		AutoComplete:    cli.Completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		log.Fatalf("Failed to initialize readline: %v", err)
	}
	defer rl.Close()

	c := cli.New(cli.Config{
		Documents:     docService,
		Export:        exportService,
		Store:         stores.Documents,
		Media:         mediaStore,
		IDs:           outline.UUIDGenerator{},
		UserID:        cfg.DevUserID,
		AutoSaveDelay: cfg.AutoSaveDelay,
		Logger:        logger,
		Out:           rl.Stdout(),
	})

	fmt.Fprintln(rl.Stdout(), "Journal editor. Type 'help' for commands.")
	if len(os.Args) > 1 {
		if err := c.Execute(ctx, "open "+os.Args[1]); err != nil {
			fmt.Fprintln(rl.Stdout(), "Error:", err)
		}
	}

	if err := c.Run(ctx, rl); err != nil {
		logger.Error("editor stopped", "error", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	fmt.Fprintln(rl.Stdout(), "Goodbye!")
}
