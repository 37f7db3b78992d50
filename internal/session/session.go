package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"journal/internal/domain/models/journal"
	"journal/internal/outline"
	"journal/internal/outline/codec"
)

// DocumentWriter persists whole documents, last writer wins.
type DocumentWriter interface {
	Upsert(ctx context.Context, doc *journal.Document) error
}

// MediaStore stores uploaded files and returns their public URL.
type MediaStore interface {
	Upload(ctx context.Context, scope, filename string, data []byte) (string, error)
	Remove(ctx context.Context, scope, publicURL string) error
}

// Config wires a session to its collaborators. Store is required for Save;
// Publisher defaults to Store; Media is required for uploads.
type Config struct {
	UserID    string
	Store     DocumentWriter
	Publisher DocumentWriter
	Media     MediaStore
	IDs       outline.IDGenerator
	Logger    *slog.Logger
	Now       func() time.Time
}

// Session serializes actions against one document's state.
type Session struct {
	cfg       Config
	logger    *slog.Logger
	createdAt time.Time

	mu        sync.Mutex
	state     State
	saved     uint64
	pending   map[string]*pendingUpload
	listeners []func(rev uint64)
}

// New starts a session on an already decoded state. The state is treated as
// saved.
func New(st State, createdAt time.Time, cfg Config) *Session {
	if cfg.IDs == nil {
		cfg.IDs = outline.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Publisher == nil {
		cfg.Publisher = cfg.Store
	}
	return &Session{
		cfg:       cfg,
		logger:    cfg.Logger.With("doc_id", st.DocID),
		createdAt: createdAt,
		state:     st,
		saved:     st.Revision,
		pending:   make(map[string]*pendingUpload),
	}
}

// Open decodes a stored document and starts a session on it. The report
// lists the parts of the content that had to be repaired.
func Open(doc *journal.Document, cfg Config) (*Session, *codec.LoadReport) {
	ids := cfg.IDs
	if ids == nil {
		ids = outline.UUIDGenerator{}
	}
	snap, report := codec.DecodePersisted(doc.Content, ids)
	st := NewState(doc.ID, doc.Title, snap)
	st.Published = doc.IsPublished
	s := New(st, doc.CreatedAt, cfg)
	if !report.OK() {
		s.logger.Warn("document content repaired on load", "warnings", len(report.Warnings))
	}
	return s, report
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dirty reports whether there are changes not yet written by Save.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Revision != s.saved
}

// OnChange registers fn to be called after every applied action.
func (s *Session) OnChange(fn func(rev uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// NewID mints a bullet id.
func (s *Session) NewID() string {
	return s.cfg.IDs.NewID()
}

// Dispatch applies a and reports whether it changed anything. Resize and
// detach actions addressed to an attachment that is still uploading are
// queued and take effect when the upload lands.
func (s *Session) Dispatch(a Action) bool {
	s.mu.Lock()
	if s.queuePending(a) {
		s.mu.Unlock()
		return true
	}
	next, ok := Reduce(s.state, a)
	if ok {
		s.state = next
	}
	listeners := s.listeners
	rev := s.state.Revision
	s.mu.Unlock()

	if ok {
		for _, fn := range listeners {
			fn(rev)
		}
	}
	return ok
}

// AddRoot appends a root bullet and returns its id.
func (s *Session) AddRoot(content string) (string, bool) {
	id := s.NewID()
	return id, s.Dispatch(AddRoot{ID: id, Content: content})
}

// InsertChild appends an empty child to parentID and returns its id.
func (s *Session) InsertChild(parentID string) (string, bool) {
	id := s.NewID()
	return id, s.Dispatch(InsertChild{ParentID: parentID, ID: id})
}

// InsertSiblingAfter adds an empty bullet right after targetID.
func (s *Session) InsertSiblingAfter(targetID string) (string, bool) {
	id := s.NewID()
	return id, s.Dispatch(InsertSiblingAfter{TargetID: targetID, ID: id})
}

// InsertSection adds a labelled section next to or under targetID and
// returns the section and child ids.
func (s *Session) InsertSection(targetID, label string) (string, string, bool) {
	sectionID, childID := s.NewID(), s.NewID()
	ok := s.Dispatch(InsertSection{TargetID: targetID, Label: label, SectionID: sectionID, ChildID: childID})
	return sectionID, childID, ok
}

// Document renders the current state as a stored document.
func (s *Session) Document() (*journal.Document, uint64, error) {
	st := s.State()
	return s.document(st)
}

func (s *Session) document(st State) (*journal.Document, uint64, error) {
	content, err := codec.EncodePersisted(st.Snapshot())
	if err != nil {
		return nil, 0, err
	}
	now := s.cfg.Now()
	created := s.createdAt
	if created.IsZero() {
		created = now
	}
	return &journal.Document{
		ID:          st.DocID,
		UserID:      s.cfg.UserID,
		Title:       st.Title,
		Content:     content,
		IsPublished: st.Published,
		CreatedAt:   created,
		UpdatedAt:   now,
	}, st.Revision, nil
}

// Export returns the state as an export document.
func (s *Session) Export() codec.Document {
	st := s.State()
	return codec.Document{Title: st.Title, Snapshot: st.Snapshot()}
}
