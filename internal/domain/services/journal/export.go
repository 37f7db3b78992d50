package journal

import (
	"context"
	"io"
)

// Export and import formats
const (
	FormatJSON     = "json"
	FormatOPML     = "opml"
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
	FormatDOCX     = "docx"
)

// ExportService converts documents to and from files
type ExportService interface {
	// Export renders a document in the given format
	Export(ctx context.Context, userID, documentID, format string) (*ExportFile, error)

	// Import creates a new document from an OPML or Markdown file
	Import(ctx context.Context, req *ImportRequest) (*DocumentView, error)
}

// ExportFile is a rendered export
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImportRequest represents a file import
type ImportRequest struct {
	UserID string
	Format string
	Title  string // overrides the title found in the file
	Body   io.Reader
}
