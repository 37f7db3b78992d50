package journal

import (
	"context"
	"fmt"
	"log/slog"

	"journal/internal/domain"
	models "journal/internal/domain/models/journal"
	journalRepo "journal/internal/domain/repositories/journal"

	"journal/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDocumentRepository implements DocumentRepository on PostgreSQL
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

var _ journalRepo.DocumentRepository = (*PostgresDocumentRepository)(nil)

// EnsureSchema creates the documents table when it does not exist.
func (r *PostgresDocumentRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			title        VARCHAR(255) NOT NULL DEFAULT '',
			content      TEXT NOT NULL DEFAULT '',
			is_published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS %[1]s_user_updated_idx ON %[1]s (user_id, updated_at DESC);
	`, r.tables.Documents)

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const documentColumns = "id, user_id, title, content, is_published, created_at, updated_at"

// Get retrieves a document owned by userID
func (r *PostgresDocumentRepository) Get(ctx context.Context, id, userID string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, documentColumns, r.tables.Documents)

	return r.getOne(ctx, id, query, id, userID)
}

// GetPublished retrieves a published document of any owner
func (r *PostgresDocumentRepository) GetPublished(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND is_published
	`, documentColumns, r.tables.Documents)

	return r.getOne(ctx, id, query, id)
}

func (r *PostgresDocumentRepository) getOne(ctx context.Context, id, query string, args ...interface{}) (*models.Document, error) {
	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, args...).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.Content,
		&doc.IsPublished,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", id)}
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// List returns summaries of the user's documents, newest first
func (r *PostgresDocumentRepository) List(ctx context.Context, userID string) ([]models.DocumentSummary, error) {
	query := fmt.Sprintf(`
		SELECT id, title, is_published, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC, id
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	summaries := []models.DocumentSummary{}
	for rows.Next() {
		var s models.DocumentSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.IsPublished, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return summaries, nil
}

// Create inserts a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, r.tables.Documents, documentColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Title,
		doc.Content,
		doc.IsPublished,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document %s already exists", doc.ID),
				ResourceType: "document",
				ResourceID:   doc.ID,
			}
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Update replaces title, content and publish flag
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $3, content = $4, is_published = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, doc.ID, doc.UserID, doc.Title, doc.Content, doc.IsPublished, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", doc.ID)}
	}
	return nil
}

// Upsert inserts the document or replaces the stored copy. A row owned by a
// different user is left untouched and reported as not found.
func (r *PostgresDocumentRepository) Upsert(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    content = EXCLUDED.content,
		    is_published = EXCLUDED.is_published,
		    updated_at = EXCLUDED.updated_at
		WHERE %[1]s.user_id = EXCLUDED.user_id
	`, r.tables.Documents, documentColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Title,
		doc.Content,
		doc.IsPublished,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", doc.ID)}
	}
	r.logger.Debug("document upserted", "id", doc.ID, "bytes", len(doc.Content))
	return nil
}

// Delete removes a document owned by userID
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", id)}
	}
	return nil
}
