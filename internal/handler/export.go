package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"journal/internal/config"
	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/httputil"
)

// ExportHandler handles export and import HTTP requests
type ExportHandler struct {
	exportService journalSvc.ExportService
	logger        *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService journalSvc.ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        logger,
	}
}

// Export downloads a document
// GET /api/documents/{id}/export?format=json|opml|markdown|yaml|docx
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = journalSvc.FormatJSON
	}

	file, err := h.exportService.Export(r.Context(), httputil.GetUserID(r), id, format)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondFile(w, file.Filename, file.ContentType, file.Data)
}

// Import creates a document from an uploaded outline
// POST /api/documents/import?format=opml|markdown&title=...
//
// The outline is either the raw request body or the "file" part of a
// multipart form.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxImportSize+multipartOverhead)

	var body io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(config.MaxImportSize); err != nil {
			handleParseError(w, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, _, err := r.FormFile("file")
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()
		body = file
	}

	doc, err := h.exportService.Import(r.Context(), &journalSvc.ImportRequest{
		UserID: httputil.GetUserID(r),
		Format: r.URL.Query().Get("format"),
		Title:  r.URL.Query().Get("title"),
		Body:   body,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("document imported", "document_id", doc.ID, "bullets", doc.Stats.Bullets)
	httputil.RespondJSON(w, http.StatusCreated, doc)
}
