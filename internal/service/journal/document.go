package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"journal/internal/content"
	"journal/internal/domain"
	models "journal/internal/domain/models/journal"
	"journal/internal/domain/repositories"
	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/outline"
	"journal/internal/outline/codec"
	"journal/internal/session"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultTitle is used for documents created without a title.
const DefaultTitle = "Untitled"

// mediaCleanupLimit bounds concurrent storage removals after a delete.
const mediaCleanupLimit = 4

// documentService implements the DocumentService interface
type documentService struct {
	*Editor
	txManager repositories.TransactionManager
	sanitizer *content.Sanitizer
}

// NewDocumentService creates a new document service
func NewDocumentService(editor *Editor, txManager repositories.TransactionManager) journalSvc.DocumentService {
	return &documentService{
		Editor:    editor,
		txManager: txManager,
		sanitizer: content.NewSanitizer(),
	}
}

// CreateDocument creates a document, optionally seeded with an outline
func (s *documentService) CreateDocument(ctx context.Context, req *journalSvc.CreateDocumentRequest) (*journalSvc.DocumentView, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.Title == "" {
		req.Title = DefaultTitle
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	snap, report := codec.DecodePersisted(req.Content, s.ids)
	return s.create(ctx, req.UserID, req.ID, req.Title, snap, report)
}

// ListDocuments returns the user's documents
func (s *documentService) ListDocuments(ctx context.Context, userID string) ([]models.DocumentSummary, error) {
	return s.docRepo.List(ctx, userID)
}

// GetDocument loads a document and reports any content repaired on load
func (s *documentService) GetDocument(ctx context.Context, userID, documentID string) (*journalSvc.DocumentView, error) {
	sess, doc, report, err := s.open(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	return s.view(sess.State(), doc.CreatedAt, doc.UpdatedAt, report), nil
}

// UpdateDocument changes the title and/or replaces the outline of an
// existing document
func (s *documentService) UpdateDocument(ctx context.Context, userID, documentID string, req *journalSvc.UpdateDocumentRequest) (*journalSvc.DocumentView, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
	}
	return s.replace(ctx, userID, documentID, req.Title, req.Content, false)
}

// ReplaceContent is the auto-save path: the document is created when it
// does not exist yet
func (s *documentService) ReplaceContent(ctx context.Context, userID, documentID string, req *journalSvc.ReplaceContentRequest) (*journalSvc.DocumentView, error) {
	if err := validateDocumentID(documentID); err != nil {
		return nil, fmt.Errorf("%w: id: %v", domain.ErrValidation, err)
	}
	if err := validateTitle(req.Title); err != nil {
		return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
	}
	return s.replace(ctx, userID, documentID, req.Title, req.Content, true)
}

func (s *documentService) replace(ctx context.Context, userID, documentID string, title *string, blob any, upsert bool) (*journalSvc.DocumentView, error) {
	unlock := s.lock(documentID)
	defer unlock()

	existing, err := s.docRepo.Get(ctx, documentID, userID)
	if err != nil && (!upsert || !errors.Is(err, domain.ErrNotFound)) {
		return nil, err
	}

	var (
		snap   codec.Snapshot
		report *codec.LoadReport
	)
	switch {
	case blob != nil:
		snap, report = codec.DecodePersisted(blob, s.ids)
	case existing != nil:
		snap, report = codec.DecodePersisted(existing.Content, s.ids)
	default:
		snap, report = codec.EmptySnapshot(), &codec.LoadReport{}
	}

	name := DefaultTitle
	createdAt := s.now()
	published := false
	if existing != nil {
		name, createdAt, published = existing.Title, existing.CreatedAt, existing.IsPublished
	}
	if title != nil {
		name = strings.TrimSpace(*title)
	}

	st := session.NewState(documentID, name, snap)
	st.Published = published
	sess := session.New(st, createdAt, s.sessionConfig(userID))
	if _, err := sess.Save(ctx); err != nil {
		return nil, err
	}

	s.logger.Debug("document content replaced",
		"document_id", documentID,
		"created", existing == nil,
		"warnings", len(report.Warnings),
	)
	return s.view(st, createdAt, s.now(), report), nil
}

// DeleteDocument deletes a document. Its media files are removed afterwards,
// in parallel and best effort: failures are logged, never returned.
func (s *documentService) DeleteDocument(ctx context.Context, userID, documentID string) error {
	unlock := s.lock(documentID)
	defer unlock()

	var doc *models.Document
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		d, err := s.docRepo.Get(ctx, documentID, userID)
		if err != nil {
			return err
		}
		if err := s.docRepo.Delete(ctx, documentID, userID); err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("document deleted", "document_id", documentID, "user_id", userID)
	s.removeMedia(context.WithoutCancel(ctx), doc)
	return nil
}

func (s *documentService) removeMedia(ctx context.Context, doc *models.Document) {
	if s.media == nil {
		return
	}
	snap, _ := codec.DecodePersisted(doc.Content, s.ids)
	items := append(snap.Images.Items(), snap.Videos.Items()...)
	if len(items) == 0 {
		return
	}

	scope := session.MediaScope(doc.UserID, doc.ID)
	var g errgroup.Group
	g.SetLimit(mediaCleanupLimit)
	for _, att := range items {
		g.Go(func() error {
			if err := s.media.Remove(ctx, scope, att.URL); err != nil {
				s.logger.Warn("failed to remove media of deleted document",
					"document_id", doc.ID,
					"media_id", att.ID,
					"error", err,
				)
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("media cleanup incomplete", "document_id", doc.ID, "error", err)
	}
}

// ApplyOperations runs a batch of edits through one session. Operations
// that do not apply (unknown ids, impossible moves) are reported and
// skipped; the rest of the batch still runs.
func (s *documentService) ApplyOperations(ctx context.Context, userID, documentID string, req *journalSvc.OperationsRequest) (*journalSvc.OperationsResult, error) {
	if err := validateOperationsRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	results := make([]journalSvc.OperationOutcome, 0, len(req.Operations))
	view, err := s.edit(ctx, userID, documentID, func(sess *session.Session) error {
		for _, op := range req.Operations {
			results = append(results, s.apply(ctx, sess, op))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	applied := 0
	for _, r := range results {
		if r.Applied {
			applied++
		}
	}
	s.logger.Debug("operations applied",
		"document_id", documentID,
		"requested", len(results),
		"applied", applied,
	)
	return &journalSvc.OperationsResult{Document: view, Results: results}, nil
}

func (s *documentService) apply(ctx context.Context, sess *session.Session, op journalSvc.Operation) journalSvc.OperationOutcome {
	out := journalSvc.OperationOutcome{Op: op.Op}
	created := func(ids ...string) {
		if out.Applied {
			out.Created = ids
		}
	}

	switch op.Op {
	case journalSvc.OpAddRoot:
		var id string
		id, out.Applied = sess.AddRoot(op.Content)
		created(id)
	case journalSvc.OpUpdateContent:
		out.Applied = sess.Dispatch(session.UpdateContent{ID: op.ID, Content: op.Content})
	case journalSvc.OpInsertChild:
		var id string
		id, out.Applied = sess.InsertChild(op.ID)
		created(id)
	case journalSvc.OpInsertSibling:
		var id string
		id, out.Applied = sess.InsertSiblingAfter(op.ID)
		created(id)
	case journalSvc.OpDelete:
		out.Applied = sess.Dispatch(session.DeleteNode{ID: op.ID})
	case journalSvc.OpOutdent:
		out.Applied = sess.Dispatch(session.Outdent{ID: op.ID})
	case journalSvc.OpIndent:
		out.Applied = sess.Dispatch(session.Indent{ID: op.ID})
	case journalSvc.OpToggleCollapse:
		out.Applied = sess.Dispatch(session.ToggleCollapse{ID: op.ID})
	case journalSvc.OpInsertSection:
		var sectionID, childID string
		sectionID, childID, out.Applied = sess.InsertSection(op.ID, op.Label)
		created(sectionID, childID)
	case journalSvc.OpSetTitle:
		out.Applied = sess.Dispatch(session.SetTitle{Title: strings.TrimSpace(op.Title)})
	case journalSvc.OpResizeMedia:
		out.Applied = sess.Dispatch(session.ResizeMedia{
			Kind:      outline.MediaKind(op.Kind),
			ID:        op.MediaID,
			Placement: placement(op.Width, op.Height, op.Top, op.Left),
		})
	case journalSvc.OpDetachMedia:
		out.Applied = sess.Detach(ctx, outline.MediaKind(op.Kind), op.MediaID)
	}
	return out
}

// SetPublished publishes or withdraws a document
func (s *documentService) SetPublished(ctx context.Context, userID, documentID string, published bool) (*journalSvc.DocumentView, error) {
	unlock := s.lock(documentID)
	defer unlock()

	sess, doc, report, err := s.open(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if published {
		err = sess.Publish(ctx)
	} else {
		err = sess.Unpublish(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.view(sess.State(), doc.CreatedAt, s.now(), report), nil
}

// GetPublished returns a published document with its content sanitized
func (s *documentService) GetPublished(ctx context.Context, documentID string) (*journalSvc.DocumentView, error) {
	doc, err := s.docRepo.GetPublished(ctx, documentID)
	if err != nil {
		return nil, err
	}

	snap, _ := codec.DecodePersisted(doc.Content, s.ids)
	snap.Forest = s.sanitizer.Forest(snap.Forest)
	st := session.NewState(doc.ID, doc.Title, snap)
	st.Published = true
	return s.view(st, doc.CreatedAt, doc.UpdatedAt, nil), nil
}
