package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"journal/internal/content"
	models "journal/internal/domain/models/journal"
	journalRepo "journal/internal/domain/repositories/journal"
	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/outline"
	"journal/internal/outline/codec"
	"journal/internal/session"
)

// Editor opens editing sessions on stored documents. Edits to the same
// document are serialized; the services built on one Editor share its locks.
type Editor struct {
	docRepo  journalRepo.DocumentRepository
	media    session.MediaStore
	ids      outline.IDGenerator
	analyzer *content.Analyzer
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*docLock
}

type docLock struct {
	mu   sync.Mutex
	refs int
}

// NewEditor creates an editor. media may be nil when uploads are disabled.
func NewEditor(
	docRepo journalRepo.DocumentRepository,
	media session.MediaStore,
	ids outline.IDGenerator,
	logger *slog.Logger,
) *Editor {
	if ids == nil {
		ids = outline.UUIDGenerator{}
	}
	return &Editor{
		docRepo:  docRepo,
		media:    media,
		ids:      ids,
		analyzer: content.NewAnalyzer(),
		logger:   logger,
		now:      time.Now,
		locks:    make(map[string]*docLock),
	}
}

// lock acquires the edit lock of a document and returns its release func.
func (e *Editor) lock(documentID string) func() {
	e.mu.Lock()
	l, ok := e.locks[documentID]
	if !ok {
		l = &docLock{}
		e.locks[documentID] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, documentID)
		}
		e.mu.Unlock()
	}
}

func (e *Editor) sessionConfig(userID string) session.Config {
	return session.Config{
		UserID: userID,
		Store:  e.docRepo,
		Media:  e.media,
		IDs:    e.ids,
		Logger: e.logger,
		Now:    e.now,
	}
}

// open loads a document owned by userID and starts a session on it.
func (e *Editor) open(ctx context.Context, userID, documentID string) (*session.Session, *models.Document, *codec.LoadReport, error) {
	doc, err := e.docRepo.Get(ctx, documentID, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	sess, report := session.Open(doc, e.sessionConfig(userID))
	return sess, doc, report, nil
}

// edit runs fn on a session for the document while holding its lock and
// saves when fn left unsaved changes.
func (e *Editor) edit(ctx context.Context, userID, documentID string, fn func(*session.Session) error) (*journalSvc.DocumentView, error) {
	unlock := e.lock(documentID)
	defer unlock()

	sess, doc, report, err := e.open(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	updatedAt := doc.UpdatedAt
	if sess.Dirty() {
		if _, err := sess.Save(ctx); err != nil {
			return nil, err
		}
		updatedAt = e.now()
	}
	return e.view(sess.State(), doc.CreatedAt, updatedAt, report), nil
}

// create stores a new document holding snap.
func (e *Editor) create(ctx context.Context, userID, id, title string, snap codec.Snapshot, report *codec.LoadReport) (*journalSvc.DocumentView, error) {
	st := session.NewState(id, title, snap)
	sess := session.New(st, e.now(), e.sessionConfig(userID))
	doc, _, err := sess.Document()
	if err != nil {
		return nil, err
	}
	if err := e.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	e.logger.Info("document created",
		"document_id", doc.ID,
		"user_id", userID,
		"bullets", outline.Count(st.Forest),
	)
	return e.view(st, doc.CreatedAt, doc.UpdatedAt, report), nil
}

// view renders a session state for clients.
func (e *Editor) view(st session.State, createdAt, updatedAt time.Time, report *codec.LoadReport) *journalSvc.DocumentView {
	snap := st.Snapshot()
	v := &journalSvc.DocumentView{
		ID:          st.DocID,
		Title:       st.Title,
		IsPublished: st.Published,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Bullets:     codec.ToExportTree(snap.Forest, snap.Collapsed),
		Images:      snap.Images.Items(),
		Videos:      snap.Videos.Items(),
		Stats:       e.analyzer.Outline(snap.Forest),
	}
	if report != nil {
		v.Warnings = report.Warnings
	}
	return v
}
