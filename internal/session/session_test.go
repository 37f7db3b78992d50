package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"journal/internal/domain"
	"journal/internal/domain/models/journal"
	"journal/internal/outline"
	"journal/internal/outline/codec"
	mediastore "journal/internal/storage/media"
)

type fakeStore struct {
	mu   sync.Mutex
	docs []*journal.Document
	err  error
}

func (f *fakeStore) Upsert(_ context.Context, doc *journal.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

func (f *fakeStore) last() *journal.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[len(f.docs)-1]
}

type fakeMedia struct {
	mu        sync.Mutex
	gate      chan struct{}
	uploadErr error
	removeErr error
	uploaded  []string
	removed   []string
	scopes    []string
}

func (f *fakeMedia) Upload(_ context.Context, scope, filename string, _ []byte) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	url := "https://media.test/" + scope + "/" + filename
	f.mu.Lock()
	f.uploaded = append(f.uploaded, url)
	f.mu.Unlock()
	return url, nil
}

func (f *fakeMedia) Remove(_ context.Context, scope, url string) error {
	f.mu.Lock()
	f.removed = append(f.removed, url)
	f.scopes = append(f.scopes, scope)
	f.mu.Unlock()
	return f.removeErr
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.IDs == nil {
		cfg.IDs = &outline.SequenceGenerator{Prefix: "b"}
	}
	return New(NewState("doc1", "Journal", codec.EmptySnapshot()), time.Time{}, cfg)
}

func TestReduceInsertChildExpandsParent(t *testing.T) {
	st := NewState("d", "t", codec.EmptySnapshot())
	st, _ = Reduce(st, AddRoot{ID: "a"})
	st, _ = Reduce(st, ToggleCollapse{ID: "a"})
	if !st.Collapsed.Has("a") {
		t.Fatal("a should be collapsed")
	}

	st, ok := Reduce(st, InsertChild{ParentID: "a", ID: "a1"})
	if !ok {
		t.Fatal("InsertChild not applied")
	}
	if st.Collapsed.Has("a") {
		t.Error("parent still collapsed after InsertChild")
	}
	if st.Revision != 3 {
		t.Errorf("Revision = %d, want 3", st.Revision)
	}
}

func TestReduceNoOpKeepsRevision(t *testing.T) {
	st := NewState("d", "t", codec.EmptySnapshot())
	st, _ = Reduce(st, AddRoot{ID: "a", Content: "x"})

	tests := []struct {
		name   string
		action Action
	}{
		{"same content", UpdateContent{ID: "a", Content: "x"}},
		{"missing parent", InsertChild{ParentID: "zz", ID: "n"}},
		{"missing target", InsertSiblingAfter{TargetID: "zz", ID: "n"}},
		{"duplicate id", AddRoot{ID: "a"}},
		{"outdent root", Outdent{ID: "a"}},
		{"delete missing", DeleteNode{ID: "zz"}},
		{"resize missing", ResizeMedia{Kind: outline.MediaImage, ID: "a-1"}},
		{"same title", SetTitle{Title: "t"}},
		{"bad kind", AttachMedia{Kind: "audio", Owner: "a", Suffix: "1", URL: "u"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := Reduce(st, tt.action)
			if ok {
				t.Fatal("expected no-op")
			}
			if next.Revision != st.Revision {
				t.Fatalf("Revision = %d, want %d", next.Revision, st.Revision)
			}
		})
	}
}

func TestReduceDeletePrunesCollapsed(t *testing.T) {
	st := NewState("d", "t", codec.EmptySnapshot())
	st, _ = Reduce(st, AddRoot{ID: "a"})
	st, _ = Reduce(st, InsertChild{ParentID: "a", ID: "a1"})
	st, _ = Reduce(st, InsertChild{ParentID: "a1", ID: "a1x"})
	st, _ = Reduce(st, ToggleCollapse{ID: "a1"})

	st, _ = Reduce(st, DeleteNode{ID: "a"})
	if len(st.Forest) != 0 || len(st.Collapsed) != 0 {
		t.Fatalf("forest=%d collapsed=%v", len(st.Forest), st.Collapsed.Sorted())
	}
}

func TestReduceMedia(t *testing.T) {
	st := NewState("d", "t", codec.EmptySnapshot())
	st, _ = Reduce(st, AddRoot{ID: "a"})
	st, ok := Reduce(st, AttachMedia{Kind: outline.MediaVideo, Owner: "a", Suffix: "v1", URL: "u"})
	if !ok || st.Videos.Len() != 1 || st.Images.Len() != 0 {
		t.Fatalf("attach: ok=%v videos=%d images=%d", ok, st.Videos.Len(), st.Images.Len())
	}
	h := 120
	st, _ = Reduce(st, ResizeMedia{Kind: outline.MediaVideo, ID: "a-v1", Placement: outline.Placement{Width: 500, Height: &h}})
	v, _ := st.Videos.Get("a-v1")
	if v.Width != 500 || v.Height == nil || *v.Height != 120 {
		t.Fatalf("video = %+v", v)
	}
	st, ok = Reduce(st, DetachMedia{Kind: outline.MediaVideo, ID: "a-v1"})
	if !ok || st.Videos.Len() != 0 {
		t.Fatal("detach failed")
	}
}

func TestSessionSave(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(t, Config{Store: store, UserID: "u1"})

	if s.Dirty() {
		t.Fatal("new session should be clean")
	}
	id, _ := s.AddRoot("<p>hello</p>")
	child, _ := s.InsertChild(id)
	s.Dispatch(ToggleCollapse{ID: id})
	if !s.Dirty() {
		t.Fatal("expected dirty session")
	}

	rev, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rev != 3 || s.Dirty() {
		t.Fatalf("rev=%d dirty=%v", rev, s.Dirty())
	}

	doc := store.last()
	if doc.ID != "doc1" || doc.UserID != "u1" || doc.Title != "Journal" {
		t.Fatalf("doc = %+v", doc)
	}
	snap, report := codec.DecodePersisted(doc.Content, &outline.SequenceGenerator{})
	if !report.OK() {
		t.Fatalf("warnings: %v", report.Warnings)
	}
	if !snap.Collapsed.Has(id) {
		t.Error("collapse state not persisted")
	}
	if _, ok := outline.FindNode(snap.Forest, child); !ok {
		t.Error("child not persisted")
	}
}

func TestSessionSaveFailureKeepsState(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	s := newTestSession(t, Config{Store: store})
	s.AddRoot("x")

	_, err := s.Save(context.Background())
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
	if !s.Dirty() {
		t.Error("failed save should leave the session dirty")
	}
	if len(s.State().Forest) != 1 {
		t.Error("state changed by failed save")
	}
}

func TestSessionUploadAppliesQueuedResize(t *testing.T) {
	media := &fakeMedia{gate: make(chan struct{})}
	s := newTestSession(t, Config{Media: media, UserID: "u1"})
	owner, _ := s.AddRoot("photo day")

	id, done, err := s.Upload(context.Background(), outline.MediaImage, owner, "Beach.PNG", []byte("png"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(id, owner+"-") {
		t.Fatalf("id = %q", id)
	}
	if !s.Uploading(id) {
		t.Fatal("upload should be pending")
	}

	left := 50
	if !s.Dispatch(ResizeMedia{Kind: outline.MediaImage, ID: id, Placement: outline.Placement{Width: 640, Left: &left}}) {
		t.Fatal("resize during upload should be queued")
	}
	close(media.gate)

	res := <-done
	if res.Err != nil {
		t.Fatalf("upload result: %v", res.Err)
	}
	if res.Value.Width != 640 || res.Value.Left == nil || *res.Value.Left != 50 {
		t.Fatalf("attachment = %+v", res.Value)
	}
	if !strings.HasSuffix(res.Value.URL, "u1/doc1/"+id+".png") {
		t.Errorf("url = %q", res.Value.URL)
	}
	if got := s.State().Images.ForOwner(owner); len(got) != 1 {
		t.Errorf("ForOwner = %d, want 1", len(got))
	}
	if s.Uploading(id) {
		t.Error("upload still pending")
	}
}

func TestSessionUploadNotifiesWithQueuedPlacement(t *testing.T) {
	media := &fakeMedia{gate: make(chan struct{})}
	s := newTestSession(t, Config{Media: media})
	owner, _ := s.AddRoot("x")

	id, done, err := s.Upload(context.Background(), outline.MediaImage, owner, "a.png", nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	s.Dispatch(ResizeMedia{Kind: outline.MediaImage, ID: id, Placement: outline.Placement{Width: 640}})

	var (
		mu     sync.Mutex
		widths []int
	)
	s.OnChange(func(uint64) {
		att, ok := s.State().Images.Get(id)
		mu.Lock()
		defer mu.Unlock()
		if ok {
			widths = append(widths, att.Width)
		}
	})
	close(media.gate)
	if res := <-done; res.Err != nil {
		t.Fatalf("upload result: %v", res.Err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(widths) != 1 || widths[0] != 640 {
		t.Errorf("widths seen by listeners = %v, want [640]", widths)
	}
}

func TestSessionUploadDetachedInFlight(t *testing.T) {
	media := &fakeMedia{gate: make(chan struct{})}
	s := newTestSession(t, Config{Media: media})
	owner, _ := s.AddRoot("x")

	id, done, err := s.Upload(context.Background(), outline.MediaVideo, owner, "clip.mp4", nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	s.Dispatch(DetachMedia{Kind: outline.MediaVideo, ID: id})
	close(media.gate)

	res := <-done
	if !errors.Is(res.Err, ErrDetachedDuringUpload) {
		t.Fatalf("err = %v", res.Err)
	}
	if s.State().Videos.Len() != 0 {
		t.Error("detached upload was attached")
	}
	if len(media.removed) != 1 {
		t.Errorf("removed = %v", media.removed)
	}
}

func TestSessionUploadErrors(t *testing.T) {
	t.Run("storage failure", func(t *testing.T) {
		media := &fakeMedia{uploadErr: errors.New("bucket gone")}
		s := newTestSession(t, Config{Media: media})
		owner, _ := s.AddRoot("x")
		before := s.State().Revision

		_, done, err := s.Upload(context.Background(), outline.MediaImage, owner, "a.jpg", nil)
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		res := <-done
		if !errors.Is(res.Err, domain.ErrStorage) {
			t.Fatalf("err = %v", res.Err)
		}
		if s.State().Revision != before {
			t.Error("state changed by failed upload")
		}
	})

	t.Run("missing owner", func(t *testing.T) {
		s := newTestSession(t, Config{Media: &fakeMedia{}})
		_, _, err := s.Upload(context.Background(), outline.MediaImage, "nope", "a.jpg", nil)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestSessionDetachIgnoresRemoveFailure(t *testing.T) {
	media := &fakeMedia{removeErr: errors.New("timeout")}
	s := newTestSession(t, Config{Media: media})
	owner, _ := s.AddRoot("x")
	s.Dispatch(AttachMedia{Kind: outline.MediaImage, Owner: owner, Suffix: "i1", URL: "https://media.test/i1.png"})

	if !s.Detach(context.Background(), outline.MediaImage, owner+"-i1") {
		t.Fatal("Detach returned false")
	}
	if s.State().Images.Len() != 0 {
		t.Error("attachment still present")
	}
	if len(media.removed) != 1 || media.removed[0] != "https://media.test/i1.png" {
		t.Errorf("removed = %v", media.removed)
	}
	if media.scopes[0] != "local/doc1" {
		t.Errorf("scope = %q, want local/doc1", media.scopes[0])
	}
}

func TestSessionDetachKeepsFilesOfOtherDocuments(t *testing.T) {
	dir := t.TempDir()
	store, err := mediastore.NewLocalStore(dir, "http://h/media", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	foreign, err := store.Upload(ctx, "someone/other-doc", "b9-x.png", []byte("png"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	own, err := store.Upload(ctx, "u1/doc1", "b1-y.png", []byte("png"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	s := newTestSession(t, Config{Media: store, UserID: "u1"})
	owner, _ := s.AddRoot("x")
	s.Dispatch(AttachMedia{Kind: outline.MediaImage, Owner: owner, Suffix: "f", URL: foreign})
	s.Dispatch(AttachMedia{Kind: outline.MediaImage, Owner: owner, Suffix: "o", URL: own})

	if !s.Detach(ctx, outline.MediaImage, owner+"-f") || !s.Detach(ctx, outline.MediaImage, owner+"-o") {
		t.Fatal("Detach returned false")
	}
	if s.State().Images.Len() != 0 {
		t.Error("attachments still present")
	}
	if _, err := os.Stat(filepath.Join(dir, "someone", "other-doc", "b9-x.png")); err != nil {
		t.Errorf("file of another document removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "u1", "doc1", "b1-y.png")); !os.IsNotExist(err) {
		t.Errorf("own file still stored: %v", err)
	}
}

func TestSessionPublish(t *testing.T) {
	t.Run("requires user", func(t *testing.T) {
		s := newTestSession(t, Config{Store: &fakeStore{}})
		err := s.Publish(context.Background())
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("publishes snapshot", func(t *testing.T) {
		store, remote := &fakeStore{}, &fakeStore{}
		s := newTestSession(t, Config{Store: store, Publisher: remote, UserID: "u1"})
		s.AddRoot("public entry")

		if err := s.Publish(context.Background()); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		if !s.State().Published || !remote.last().IsPublished {
			t.Fatal("document not published")
		}
		if store.count() != 0 {
			t.Error("publish should not write to the local store")
		}
	})

	t.Run("failure leaves state", func(t *testing.T) {
		remote := &fakeStore{err: errors.New("offline")}
		s := newTestSession(t, Config{Publisher: remote, UserID: "u1"})
		err := s.Publish(context.Background())
		if !errors.Is(err, domain.ErrStorage) || s.State().Published {
			t.Fatalf("err=%v published=%v", err, s.State().Published)
		}
	})
}

func TestOpenReportsRepairs(t *testing.T) {
	doc := &journal.Document{ID: "d", Title: "t", Content: `{"bullets":[{"content":"no id"}]}`, IsPublished: true}
	s, report := Open(doc, Config{IDs: &outline.SequenceGenerator{Prefix: "r"}})
	if report.OK() {
		t.Fatal("expected warnings")
	}
	st := s.State()
	if len(st.Forest) != 1 || st.Forest[0].ID != "r1" || !st.Published {
		t.Fatalf("state = %+v", st)
	}
	if s.Dirty() {
		t.Error("opened session should be clean")
	}
}

func TestAutoSaverDebounces(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(t, Config{Store: store})
	saved := make(chan uint64, 4)
	a := NewAutoSaver(context.Background(), s,
		WithDelay(50*time.Millisecond),
		WithOnSaved(func(rev uint64) { saved <- rev }),
	)
	defer a.Close()

	id, _ := s.AddRoot("a")
	s.Dispatch(UpdateContent{ID: id, Content: "ab"})
	s.Dispatch(UpdateContent{ID: id, Content: "abc"})

	select {
	case rev := <-saved:
		if rev != 3 {
			t.Errorf("saved revision %d, want 3", rev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("auto save did not run")
	}
	if store.count() != 1 {
		t.Errorf("saves = %d, want 1", store.count())
	}
	if s.Dirty() {
		t.Error("session dirty after auto save")
	}
}

func TestAutoSaverFlush(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(t, Config{Store: store})
	a := NewAutoSaver(context.Background(), s, WithDelay(time.Hour))
	defer a.Close()

	if saved, err := a.Flush(context.Background()); saved || err != nil {
		t.Fatalf("Flush on clean session = %v, %v", saved, err)
	}
	s.AddRoot("x")
	if saved, err := a.Flush(context.Background()); !saved || err != nil {
		t.Fatalf("Flush = %v, %v", saved, err)
	}
	if store.count() != 1 {
		t.Errorf("saves = %d", store.count())
	}
}
