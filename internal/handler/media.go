package handler

import (
	"io"
	"log/slog"
	"net/http"

	"journal/internal/config"
	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/httputil"
	"journal/internal/outline"

	"github.com/go-chi/chi/v5"
)

// multipartOverhead leaves room for form fields around the file part.
const multipartOverhead = 1 << 20

// MediaHandler handles image and video HTTP requests
type MediaHandler struct {
	mediaService journalSvc.MediaService
	logger       *slog.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService journalSvc.MediaService, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		logger:       logger,
	}
}

// Upload stores a file and attaches it to a bullet
// POST /api/documents/{id}/media
//
// Multipart form fields:
//   - kind: "image" or "video"
//   - bullet_id: owner bullet
//   - file: the file
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		handleParseError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handleParseError(w, err)
		return
	}

	att, err := h.mediaService.Upload(r.Context(), &journalSvc.UploadRequest{
		UserID:     httputil.GetUserID(r),
		DocumentID: id,
		BulletID:   r.FormValue("bullet_id"),
		Kind:       outline.MediaKind(r.FormValue("kind")),
		Filename:   header.Filename,
		Data:       data,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, att)
}

// Resize changes size and placement of an attachment
// PATCH /api/documents/{id}/media/{mediaID}
func (h *MediaHandler) Resize(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	var req journalSvc.ResizeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	att, err := h.mediaService.Resize(r.Context(), httputil.GetUserID(r), id, chi.URLParam(r, "mediaID"), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, att)
}

// Detach removes an attachment
// DELETE /api/documents/{id}/media/{mediaID}
func (h *MediaHandler) Detach(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	if err := h.mediaService.Detach(r.Context(), httputil.GetUserID(r), id, chi.URLParam(r, "mediaID")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
