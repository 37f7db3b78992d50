package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"journal/internal/auth"
	"journal/internal/config"
	"journal/internal/handler"
	"journal/internal/middleware"
	"journal/internal/outline"
	"journal/internal/repository"
	serviceJournal "journal/internal/service/journal"
	"journal/internal/storage/media"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := config.NewLogger(os.Stdout, cfg.Environment)
	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.Store,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()

	// JWT verifier for Supabase authentication (skipped when auth is disabled)
	var jwtVerifier auth.JWTVerifier
	if cfg.AuthDisabled {
		logger.Warn("AUTH DISABLED: every request runs as the dev user (NEVER use in production!)", "user_id", cfg.DevUserID)
	} else {
		v, err := auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		jwtVerifier = v
	}

	stores, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer stores.Close()

	mediaStore, mediaDir, err := media.FromConfig(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to set up media storage: %v", err)
	}

	// Services
	editor := serviceJournal.NewEditor(stores.Documents, mediaStore, outline.UUIDGenerator{}, logger)
	docService := serviceJournal.NewDocumentService(editor, stores.TxManager)
	mediaService := serviceJournal.NewMediaService(editor)
	exportService := serviceJournal.NewExportService(editor)

	logger.Info("services initialized")

	router := handler.NewRouter(handler.RouterConfig{
		Documents: handler.NewDocumentHandler(docService, logger),
		Media:     handler.NewMediaHandler(mediaService, logger),
		Export:    handler.NewExportHandler(exportService, logger),
		Verifier:  jwtVerifier,
		Auth: middleware.AuthOptions{
			Disabled:  cfg.AuthDisabled,
			DevUserID: cfg.DevUserID,
		},
		MediaDir:    mediaDir,
		CORSOrigins: strings.Split(cfg.CORSOrigins, ","),
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second, // uploads up to config.MaxUploadSize
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
