package journal

import (
	"context"

	"journal/internal/domain/models/journal"
)

// DocumentRepository defines data access operations for journal documents.
// Every user-scoped call returns domain.ErrNotFound (wrapped in a
// NotFoundError) when the document does not exist or belongs to another user.
type DocumentRepository interface {
	// Get retrieves a document by ID
	Get(ctx context.Context, id, userID string) (*journal.Document, error)

	// List returns the user's documents, most recently updated first
	List(ctx context.Context, userID string) ([]journal.DocumentSummary, error)

	// Create inserts a new document; fails with a ConflictError if the ID exists
	Create(ctx context.Context, doc *journal.Document) error

	// Update replaces title, content and publish flag of an existing document
	Update(ctx context.Context, doc *journal.Document) error

	// Delete removes a document
	Delete(ctx context.Context, id, userID string) error

	// Upsert inserts or replaces the document by ID (auto-save)
	Upsert(ctx context.Context, doc *journal.Document) error

	// GetPublished retrieves a published document regardless of owner
	GetPublished(ctx context.Context, id string) (*journal.Document, error)
}
