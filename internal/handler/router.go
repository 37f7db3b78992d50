package handler

import (
	"log/slog"
	"net/http"

	"journal/internal/auth"
	"journal/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// RouterConfig wires handlers and middleware into the HTTP API.
type RouterConfig struct {
	Documents *DocumentHandler
	Media     *MediaHandler
	Export    *ExportHandler

	Verifier auth.JWTVerifier
	Auth     middleware.AuthOptions

	// MediaDir is served under /media/ when set (filesystem media store).
	MediaDir    string
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter builds the API handler.
// Order: CORS → RequestID → logging → Recovery → Auth → Routes
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Authenticate(cfg.Verifier, cfg.Auth, cfg.Logger))

	// Public endpoints
	r.Get("/health", cfg.Documents.HealthCheck)
	r.Get("/api/public/documents/{id}", cfg.Documents.GetPublished)
	if cfg.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir))))
	}

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/api/documents", cfg.Documents.ListDocuments)
		r.Post("/api/documents", cfg.Documents.CreateDocument)
		r.Post("/api/documents/import", cfg.Export.Import)
		r.Get("/api/documents/{id}", cfg.Documents.GetDocument)
		r.Patch("/api/documents/{id}", cfg.Documents.UpdateDocument)
		r.Put("/api/documents/{id}", cfg.Documents.ReplaceContent)
		r.Delete("/api/documents/{id}", cfg.Documents.DeleteDocument)
		r.Post("/api/documents/{id}/operations", cfg.Documents.ApplyOperations)
		r.Post("/api/documents/{id}/publish", cfg.Documents.Publish)
		r.Delete("/api/documents/{id}/publish", cfg.Documents.Unpublish)
		r.Get("/api/documents/{id}/export", cfg.Export.Export)

		r.Post("/api/documents/{id}/media", cfg.Media.Upload)
		r.Patch("/api/documents/{id}/media/{mediaID}", cfg.Media.Resize)
		r.Delete("/api/documents/{id}/media/{mediaID}", cfg.Media.Detach)
	})

	// CORS must wrap everything so OPTIONS pre-flight requests skip auth
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(r)
}
