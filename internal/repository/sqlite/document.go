package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"journal/internal/domain"
	models "journal/internal/domain/models/journal"
	journalRepo "journal/internal/domain/repositories/journal"
)

// DocumentRepository implements DocumentRepository on SQLite. Timestamps
// are stored as Unix nanoseconds.
type DocumentRepository struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

// NewDocumentRepository creates a repository on db using the prefixed table.
func NewDocumentRepository(db *sql.DB, tablePrefix string, logger *slog.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		table:  tablePrefix + "journal_documents",
		logger: logger,
	}
}

var _ journalRepo.DocumentRepository = (*DocumentRepository)(nil)

// EnsureSchema creates the documents table when it does not exist.
func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			title        TEXT NOT NULL DEFAULT '',
			content      TEXT NOT NULL DEFAULT '',
			is_published INTEGER NOT NULL DEFAULT 0,
			created_at   INTEGER NOT NULL,
			updated_at   INTEGER NOT NULL
		)`, r.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_user_updated_idx ON %[1]s (user_id, updated_at DESC)`, r.table),
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

const documentColumns = "id, user_id, title, content, is_published, created_at, updated_at"

func (r *DocumentRepository) Get(ctx context.Context, id, userID string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? AND user_id = ?`, documentColumns, r.table)
	return r.getOne(ctx, id, query, id, userID)
}

func (r *DocumentRepository) GetPublished(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? AND is_published = 1`, documentColumns, r.table)
	return r.getOne(ctx, id, query, id)
}

func (r *DocumentRepository) getOne(ctx context.Context, id, query string, args ...any) (*models.Document, error) {
	var (
		doc              models.Document
		created, updated int64
	)
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.Content,
		&doc.IsPublished,
		&created,
		&updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", id)}
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc.CreatedAt = fromNanos(created)
	doc.UpdatedAt = fromNanos(updated)
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, userID string) ([]models.DocumentSummary, error) {
	query := fmt.Sprintf(`
		SELECT id, title, is_published, created_at, updated_at
		FROM %s
		WHERE user_id = ?
		ORDER BY updated_at DESC, id
	`, r.table)

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	summaries := []models.DocumentSummary{}
	for rows.Next() {
		var (
			s                models.DocumentSummary
			created, updated int64
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.IsPublished, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		s.CreatedAt = fromNanos(created)
		s.UpdatedAt = fromNanos(updated)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return summaries, nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	stampNew(doc)
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?)`, r.table, documentColumns)

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Title, doc.Content, doc.IsPublished,
		doc.CreatedAt.UnixNano(), doc.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
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

func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`
		UPDATE %s SET title = ?, content = ?, is_published = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, r.table)

	res, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		doc.Title, doc.Content, doc.IsPublished, doc.UpdatedAt.UnixNano(), doc.ID, doc.UserID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireRow(res, doc.ID)
}

// Upsert inserts the document or replaces the stored copy owned by the same
// user. A row owned by someone else is reported as not found.
func (r *DocumentRepository) Upsert(ctx context.Context, doc *models.Document) error {
	stampNew(doc)
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET title = excluded.title,
		    content = excluded.content,
		    is_published = excluded.is_published,
		    updated_at = excluded.updated_at
		WHERE %[1]s.user_id = excluded.user_id
	`, r.table, documentColumns)

	res, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Title, doc.Content, doc.IsPublished,
		doc.CreatedAt.UnixNano(), doc.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	if err := requireRow(res, doc.ID); err != nil {
		return err
	}
	r.logger.Debug("document upserted", "id", doc.ID, "bytes", len(doc.Content))
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND user_id = ?`, r.table)
	res, err := getExecutor(ctx, r.db).ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", id)}
	}
	return nil
}

func stampNew(doc *models.Document) {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
