package handler

import (
	"errors"
	"log/slog"
	"net/http"

	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService journalSvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService journalSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// HealthCheck reports that the server is up
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListDocuments lists the caller's documents
// GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.ListDocuments(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

// CreateDocument creates a new document
// POST /api/documents
// Returns 201 if created, 409 with the existing document if the ID is taken
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req journalSvc.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}
	req.UserID = userID

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*journalSvc.DocumentView, error) {
			return h.docService.GetDocument(r.Context(), userID, id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument returns a document with its outline
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// updateDocumentBody is the PATCH payload. A null title is rejected.
type updateDocumentBody struct {
	Title   httputil.OptionalString `json:"title"`
	Content any                     `json:"content"`
}

// UpdateDocument renames a document and/or replaces its outline
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	var body updateDocumentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		handleParseError(w, err)
		return
	}
	if body.Title.Present && body.Title.Value == nil {
		httputil.RespondError(w, http.StatusBadRequest, "title cannot be null")
		return
	}

	doc, err := h.docService.UpdateDocument(r.Context(), httputil.GetUserID(r), id, &journalSvc.UpdateDocumentRequest{
		Title:   body.Title.Ptr(),
		Content: body.Content,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// ReplaceContent stores a full snapshot (auto-save), creating the document
// if needed
// PUT /api/documents/{id}
func (h *DocumentHandler) ReplaceContent(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	var req journalSvc.ReplaceContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	doc, err := h.docService.ReplaceContent(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyOperations applies a batch of outline edits
// POST /api/documents/{id}/operations
func (h *DocumentHandler) ApplyOperations(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	var req journalSvc.OperationsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	result, err := h.docService.ApplyOperations(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Publish makes a document publicly readable
// POST /api/documents/{id}/publish
func (h *DocumentHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

// Unpublish withdraws a published document
// DELETE /api/documents/{id}/publish
func (h *DocumentHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *DocumentHandler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.SetPublished(r.Context(), httputil.GetUserID(r), id, published)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// GetPublished returns a published document to anyone
// GET /api/public/documents/{id}
func (h *DocumentHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.docService.GetPublished(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	httputil.RespondJSON(w, http.StatusOK, doc)
}

// handleParseError answers a body that could not be decoded.
func handleParseError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		handleError(w, err)
		return
	}
	httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
}
