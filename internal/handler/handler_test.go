package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"journal/internal/domain"
	models "journal/internal/domain/models/journal"
	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/middleware"
	"journal/internal/outline"

	"github.com/goccy/go-json"
)

type stubDocuments struct {
	journalSvc.DocumentService
	docs    map[string]*journalSvc.DocumentView
	updates []*journalSvc.UpdateDocumentRequest
}

func (s *stubDocuments) ListDocuments(_ context.Context, userID string) ([]models.DocumentSummary, error) {
	var out []models.DocumentSummary
	for _, d := range s.docs {
		out = append(out, models.DocumentSummary{ID: d.ID, Title: d.Title})
	}
	return out, nil
}

func (s *stubDocuments) CreateDocument(_ context.Context, req *journalSvc.CreateDocumentRequest) (*journalSvc.DocumentView, error) {
	if _, ok := s.docs[req.ID]; ok {
		return nil, &domain.ConflictError{Message: "document exists", ResourceType: "document", ResourceID: req.ID}
	}
	v := &journalSvc.DocumentView{ID: req.ID, Title: req.Title}
	s.docs[req.ID] = v
	return v, nil
}

func (s *stubDocuments) GetDocument(_ context.Context, _, id string) (*journalSvc.DocumentView, error) {
	if d, ok := s.docs[id]; ok {
		return d, nil
	}
	return nil, &domain.NotFoundError{Message: "document not found"}
}

func (s *stubDocuments) UpdateDocument(_ context.Context, _, id string, req *journalSvc.UpdateDocumentRequest) (*journalSvc.DocumentView, error) {
	s.updates = append(s.updates, req)
	return s.docs[id], nil
}

func (s *stubDocuments) GetPublished(_ context.Context, id string) (*journalSvc.DocumentView, error) {
	if d, ok := s.docs[id]; ok && d.IsPublished {
		return d, nil
	}
	return nil, &domain.NotFoundError{Message: "document not found"}
}

type stubMedia struct {
	journalSvc.MediaService
	uploads []*journalSvc.UploadRequest
}

func (s *stubMedia) Upload(_ context.Context, req *journalSvc.UploadRequest) (*outline.Attachment, error) {
	s.uploads = append(s.uploads, req)
	return &outline.Attachment{ID: req.BulletID + "-m1", URL: "https://media.test/x.png", Width: 300}, nil
}

type stubExport struct {
	journalSvc.ExportService
}

func (stubExport) Export(_ context.Context, _, id, format string) (*journalSvc.ExportFile, error) {
	if format != journalSvc.FormatOPML {
		return nil, fmt.Errorf("%w: unsupported format", domain.ErrValidation)
	}
	return &journalSvc.ExportFile{Filename: "trip.opml", ContentType: "text/x-opml; charset=utf-8", Data: []byte("<opml/>")}, nil
}

func (stubExport) Import(_ context.Context, req *journalSvc.ImportRequest) (*journalSvc.DocumentView, error) {
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	return &journalSvc.DocumentView{ID: "imported", Title: string(raw)}, nil
}

type testServer struct {
	handler http.Handler
	docs    *stubDocuments
	media   *stubMedia
}

func newTestServer(t *testing.T, opts middleware.AuthOptions) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	docs := &stubDocuments{docs: map[string]*journalSvc.DocumentView{
		"doc1": {ID: "doc1", Title: "First", IsPublished: true},
	}}
	media := &stubMedia{}
	return &testServer{
		handler: NewRouter(RouterConfig{
			Documents:   NewDocumentHandler(docs, logger),
			Media:       NewMediaHandler(media, logger),
			Export:      NewExportHandler(stubExport{}, logger),
			Auth:        opts,
			CORSOrigins: []string{"http://localhost:3000"},
			Logger:      logger,
		}),
		docs:  docs,
		media: media,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

var devUser = middleware.AuthOptions{Disabled: true, DevUserID: "local"}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: title too long", domain.ErrValidation), http.StatusBadRequest},
		{"not found", &domain.NotFoundError{Message: "gone"}, http.StatusNotFound},
		{"unauthorized", &domain.UnauthorizedError{Message: "sign in"}, http.StatusUnauthorized},
		{"forbidden", &domain.ForbiddenError{Message: "no"}, http.StatusForbidden},
		{"conflict", &domain.ConflictError{Message: "exists", ResourceID: "x"}, http.StatusConflict},
		{"wrapped conflict", fmt.Errorf("attach b1-x: %w", domain.ErrConflict), http.StatusConflict},
		{"storage", &domain.StorageError{Op: "save", Err: errors.New("db down")}, http.StatusBadGateway},
		{"too large", fmt.Errorf("read: %w", &http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("content type = %q", ct)
			}
		})
	}
}

func TestCreateDocument(t *testing.T) {
	s := newTestServer(t, devUser)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"id":"doc2","title":"Second"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"id":"doc1","title":"Again"}`)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var existing journalSvc.DocumentView
	if err := json.Unmarshal(rec.Body.Bytes(), &existing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if existing.Title != "First" {
		t.Errorf("conflict body title = %q, want existing document", existing.Title)
	}

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d, want 400", rec.Code)
	}
}

func TestUpdateDocumentTitleSemantics(t *testing.T) {
	s := newTestServer(t, devUser)

	rec := s.do(httptest.NewRequest(http.MethodPatch, "/api/documents/doc1", strings.NewReader(`{"title":null}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("null title status = %d, want 400", rec.Code)
	}

	rec = s.do(httptest.NewRequest(http.MethodPatch, "/api/documents/doc1", strings.NewReader(`{"content":{"bullets":[]}}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	rec = s.do(httptest.NewRequest(http.MethodPatch, "/api/documents/doc1", strings.NewReader(`{"title":"Renamed"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if len(s.docs.updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(s.docs.updates))
	}
	if s.docs.updates[0].Title != nil || s.docs.updates[0].Content == nil {
		t.Errorf("content-only patch = %+v", s.docs.updates[0])
	}
	if got := s.docs.updates[1].Title; got == nil || *got != "Renamed" {
		t.Errorf("title patch = %v, want Renamed", got)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, middleware.AuthOptions{})

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list status = %d, want 401", rec.Code)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/public/documents/doc1", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("public status = %d, want 200", rec.Code)
	}
	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/public/documents/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing public status = %d, want 404", rec.Code)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestExport(t *testing.T) {
	s := newTestServer(t, devUser)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/documents/doc1/export?format=opml", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename=trip.opml` {
		t.Errorf("disposition = %q", got)
	}
	if rec.Body.String() != "<opml/>" {
		t.Errorf("body = %q", rec.Body)
	}

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/documents/doc1/export?format=pdf", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("pdf status = %d, want 400", rec.Code)
	}
}

func TestImportRawAndMultipart(t *testing.T) {
	s := newTestServer(t, devUser)

	decodeTitle := func(t *testing.T, rec *httptest.ResponseRecorder) string {
		t.Helper()
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
		}
		var doc journalSvc.DocumentView
		if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return doc.Title
	}

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/documents/import?format=markdown", strings.NewReader("- a")))
	if got := decodeTitle(t, rec); got != "- a" {
		t.Errorf("raw import read %q", got)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "outline.opml")
	part.Write([]byte("<opml/>"))
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/documents/import?format=opml", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if got := decodeTitle(t, s.do(req)); got != "<opml/>" {
		t.Errorf("multipart import read %q", got)
	}
}

func TestUploadMedia(t *testing.T) {
	s := newTestServer(t, devUser)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("kind", "image")
	mw.WriteField("bullet_id", "b1")
	part, _ := mw.CreateFormFile("file", "sea.png")
	part.Write([]byte("png-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc1/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := s.do(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	if len(s.media.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(s.media.uploads))
	}
	up := s.media.uploads[0]
	if up.UserID != "local" || up.DocumentID != "doc1" || up.Kind != outline.MediaImage || up.Filename != "sea.png" || string(up.Data) != "png-bytes" {
		t.Errorf("upload request = %+v", up)
	}

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/documents/doc1/media", strings.NewReader("x")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-multipart status = %d, want 400", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, middleware.AuthOptions{})
	req := httptest.NewRequest(http.MethodOptions, "/api/documents", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := s.do(req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow origin = %q", got)
	}
}
