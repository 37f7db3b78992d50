package journal

import (
	"context"
	"time"

	"journal/internal/content"
	models "journal/internal/domain/models/journal"
	"journal/internal/outline"
	"journal/internal/outline/codec"
)

// DocumentService handles journal document business logic
type DocumentService interface {
	// CreateDocument creates an empty document for the user
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*DocumentView, error)

	// ListDocuments returns the user's documents, most recent first
	ListDocuments(ctx context.Context, userID string) ([]models.DocumentSummary, error)

	// GetDocument loads a document and its outline
	GetDocument(ctx context.Context, userID, documentID string) (*DocumentView, error)

	// UpdateDocument changes document metadata (title)
	UpdateDocument(ctx context.Context, userID, documentID string, req *UpdateDocumentRequest) (*DocumentView, error)

	// ReplaceContent overwrites the outline with a client-side snapshot
	ReplaceContent(ctx context.Context, userID, documentID string, req *ReplaceContentRequest) (*DocumentView, error)

	// DeleteDocument deletes a document and, best effort, its media
	DeleteDocument(ctx context.Context, userID, documentID string) error

	// ApplyOperations runs a batch of outline edits and saves the result
	ApplyOperations(ctx context.Context, userID, documentID string, req *OperationsRequest) (*OperationsResult, error)

	// SetPublished publishes or withdraws a document
	SetPublished(ctx context.Context, userID, documentID string, published bool) (*DocumentView, error)

	// GetPublished returns the sanitized public view of a published document
	GetPublished(ctx context.Context, documentID string) (*DocumentView, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	UserID  string `json:"-"` // Set by handler from auth context
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Content any    `json:"content,omitempty"` // optional initial outline, stored layout
}

// UpdateDocumentRequest represents a metadata update
type UpdateDocumentRequest struct {
	Title   *string `json:"title,omitempty"`
	Content any     `json:"content,omitempty"`
}

// ReplaceContentRequest carries a full outline, in the stored content layout
type ReplaceContentRequest struct {
	Title   *string `json:"title,omitempty"`
	Content any     `json:"content"`
}

// DocumentView is a document as returned to clients: metadata, the outline
// with its collapse state, and both media lists.
type DocumentView struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	IsPublished bool                 `json:"is_published"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Bullets     []*codec.ExportNode  `json:"bullets"`
	Images      []outline.Attachment `json:"images"`
	Videos      []outline.Attachment `json:"videos"`
	Stats       content.Stats        `json:"stats"`
	Warnings    []string             `json:"warnings,omitempty"`
}
