package journal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"journal/internal/config"
	"journal/internal/domain"
	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/outline"
	"journal/internal/outline/codec"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var exportFormats = map[string]struct {
	ext         string
	contentType string
}{
	journalSvc.FormatJSON:     {".json", "application/json"},
	journalSvc.FormatOPML:     {".opml", "text/x-opml; charset=utf-8"},
	journalSvc.FormatMarkdown: {".md", "text/markdown; charset=utf-8"},
	journalSvc.FormatYAML:     {".yaml", "application/yaml"},
	journalSvc.FormatDOCX:     {".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// exportService implements the ExportService interface
type exportService struct {
	*Editor
	markdown *codec.MarkdownEncoder
}

// NewExportService creates a new export service
func NewExportService(editor *Editor) journalSvc.ExportService {
	return &exportService{Editor: editor, markdown: codec.NewMarkdownEncoder()}
}

// Export renders the document in the requested format
func (s *exportService) Export(ctx context.Context, userID, documentID, format string) (*journalSvc.ExportFile, error) {
	if err := validation.Validate(format,
		validation.Required,
		validation.In(journalSvc.FormatJSON, journalSvc.FormatOPML, journalSvc.FormatMarkdown, journalSvc.FormatYAML, journalSvc.FormatDOCX),
	); err != nil {
		return nil, fmt.Errorf("%w: format: %v", domain.ErrValidation, err)
	}

	sess, doc, _, err := s.open(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	exp := sess.Export()

	var data []byte
	switch format {
	case journalSvc.FormatJSON:
		data, err = codec.EncodeJSON(exp, s.now())
	case journalSvc.FormatOPML:
		data = codec.EncodeOPML(exp.Title, exp.Snapshot.Forest, doc.CreatedAt)
	case journalSvc.FormatMarkdown:
		data, err = s.markdown.Encode(exp)
	case journalSvc.FormatYAML:
		data, err = codec.EncodeYAML(exp, s.now())
	case journalSvc.FormatDOCX:
		data, err = codec.EncodeDOCX(exp)
	}
	if err != nil {
		return nil, fmt.Errorf("export %s as %s: %w", documentID, format, err)
	}

	f := exportFormats[format]
	return &journalSvc.ExportFile{
		Filename:    exportFilename(exp.Title) + f.ext,
		ContentType: f.contentType,
		Data:        data,
	}, nil
}

func exportFilename(title string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		return "journal"
	}
	return slug
}

// Import creates a document from an OPML or Markdown outline
func (s *exportService) Import(ctx context.Context, req *journalSvc.ImportRequest) (*journalSvc.DocumentView, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Format, validation.Required, validation.In(journalSvc.FormatOPML, journalSvc.FormatMarkdown)),
		validation.Field(&req.Title, validation.Length(0, config.MaxTitleLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	raw, err := io.ReadAll(io.LimitReader(req.Body, config.MaxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	if len(raw) > config.MaxImportSize {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("import exceeds %d bytes", config.MaxImportSize)}
	}

	var (
		title  string
		forest outline.Forest
	)
	switch req.Format {
	case journalSvc.FormatOPML:
		title, forest, err = codec.DecodeOPML(bytes.NewReader(raw), s.ids)
	case journalSvc.FormatMarkdown:
		title, forest, err = codec.DecodeMarkdown(bytes.NewReader(raw), s.ids)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if t := strings.TrimSpace(req.Title); t != "" {
		title = t
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	if r := []rune(title); len(r) > config.MaxTitleLength {
		title = string(r[:config.MaxTitleLength])
	}

	snap := codec.EmptySnapshot()
	snap.Forest = forest
	snap.Collapsed = outline.SeedCollapsed(forest)
	return s.create(ctx, req.UserID, uuid.NewString(), title, snap, &codec.LoadReport{})
}
