package session

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"journal/internal/domain"
	"journal/internal/outline"
)

// Result is the outcome of an asynchronous task.
type Result[T any] struct {
	Value T
	Err   error
}

// Go runs fn in its own goroutine and delivers its outcome on the returned
// channel, which receives exactly one value.
func Go[T any](fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		v, err := fn()
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

// ErrDetachedDuringUpload is returned by an upload whose attachment was
// detached before the file finished uploading.
var ErrDetachedDuringUpload = errors.New("attachment detached during upload")

var errNoMediaStore = errors.New("no media store configured")

type pendingUpload struct {
	kind      outline.MediaKind
	placement *outline.Placement
	detached  bool
}

// queuePending records resize and detach actions aimed at an upload in
// flight. Must be called with s.mu held.
func (s *Session) queuePending(a Action) bool {
	switch a := a.(type) {
	case ResizeMedia:
		p, ok := s.pending[a.ID]
		if !ok || p.kind != a.Kind {
			return false
		}
		placement := a.Placement
		p.placement = &placement
		return true
	case DetachMedia:
		p, ok := s.pending[a.ID]
		if !ok || p.kind != a.Kind {
			return false
		}
		p.detached = true
		return true
	}
	return false
}

// Uploading reports whether the attachment id is still being uploaded.
func (s *Session) Uploading(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// Upload stores data and attaches it to owner. The attachment id is minted
// and returned immediately so that the caller can address it while the
// upload runs. Failures leave the state untouched.
func (s *Session) Upload(ctx context.Context, kind outline.MediaKind, owner, filename string, data []byte) (string, <-chan Result[outline.Attachment], error) {
	if !kind.Valid() {
		return "", nil, &domain.ValidationError{Message: fmt.Sprintf("unknown media kind %q", kind)}
	}
	if s.cfg.Media == nil {
		return "", nil, errNoMediaStore
	}

	s.mu.Lock()
	if _, ok := outline.FindNode(s.state.Forest, owner); !ok {
		s.mu.Unlock()
		return "", nil, &domain.NotFoundError{Message: fmt.Sprintf("bullet %s not found", owner)}
	}
	suffix := s.cfg.IDs.NewID()
	id := outline.MediaID(owner, suffix)
	s.pending[id] = &pendingUpload{kind: kind}
	scope := s.mediaScope()
	s.mu.Unlock()

	name := id + strings.ToLower(filepath.Ext(filename))
	log := s.logger.With("media_id", id, "kind", string(kind))

	ch := Go(func() (outline.Attachment, error) {
		url, err := s.cfg.Media.Upload(ctx, scope, name, data)
		if err != nil {
			s.mu.Lock()
			delete(s.pending, id)
			s.mu.Unlock()
			log.Error("media upload failed", "error", err)
			return outline.Attachment{}, &domain.StorageError{Op: "upload", Err: err}
		}

		att, err := s.finishUpload(AttachMedia{Kind: kind, Owner: owner, Suffix: suffix, URL: url})
		if err != nil {
			if errors.Is(err, ErrDetachedDuringUpload) {
				log.Info("attachment detached during upload, discarding")
			} else {
				log.Warn("uploaded media could not be attached", "error", err)
			}
			if rmErr := s.cfg.Media.Remove(context.WithoutCancel(ctx), scope, url); rmErr != nil {
				log.Warn("failed to remove discarded upload", "error", rmErr)
			}
			return outline.Attachment{}, err
		}
		log.Info("media attached", "url", url)
		return att, nil
	})
	return id, ch, nil
}

// finishUpload retires the pending entry and attaches the stored file with
// its queued placement under a single hold of s.mu.
func (s *Session) finishUpload(a AttachMedia) (outline.Attachment, error) {
	id := outline.MediaID(a.Owner, a.Suffix)

	s.mu.Lock()
	p := s.pending[id]
	delete(s.pending, id)
	if p != nil && p.detached {
		s.mu.Unlock()
		return outline.Attachment{}, ErrDetachedDuringUpload
	}
	next, ok := Reduce(s.state, a)
	if !ok {
		s.mu.Unlock()
		return outline.Attachment{}, fmt.Errorf("attach %s: %w", id, domain.ErrConflict)
	}
	if p != nil && p.placement != nil {
		if resized, ok := Reduce(next, ResizeMedia{Kind: a.Kind, ID: id, Placement: *p.placement}); ok {
			next = resized
		}
	}
	s.state = next
	att, _ := next.Media(a.Kind).Get(id)
	listeners := s.listeners
	rev := next.Revision
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(rev)
	}
	return att, nil
}

// MediaScope is the storage prefix owning a document's files.
func MediaScope(userID, docID string) string {
	if userID == "" {
		userID = "local"
	}
	return path.Join(userID, docID)
}

func (s *Session) mediaScope() string {
	return MediaScope(s.cfg.UserID, s.state.DocID)
}

// Detach removes an attachment. Removal of the stored file is best effort:
// failures are logged and the attachment stays detached. Files outside this
// document's scope are never removed.
func (s *Session) Detach(ctx context.Context, kind outline.MediaKind, id string) bool {
	s.mu.Lock()
	att, found := s.state.Media(kind).Get(id)
	scope := s.mediaScope()
	s.mu.Unlock()

	if !s.Dispatch(DetachMedia{Kind: kind, ID: id}) {
		return false
	}
	if !found || s.cfg.Media == nil {
		return true
	}
	if err := s.cfg.Media.Remove(ctx, scope, att.URL); err != nil {
		s.logger.Warn("stored media not removed", "media_id", id, "url", att.URL, "error", err)
	}
	return true
}

// Save writes the current state through the configured store and returns
// the saved revision. Actions applied while the write is in flight stay
// dirty and are picked up by the next save.
func (s *Session) Save(ctx context.Context) (uint64, error) {
	if s.cfg.Store == nil {
		return 0, &domain.StorageError{Op: "save", Err: errors.New("no document store configured")}
	}
	doc, rev, err := s.Document()
	if err != nil {
		return 0, err
	}
	if err := s.cfg.Store.Upsert(ctx, doc); err != nil {
		s.logger.Error("save failed", "revision", rev, "error", err)
		return 0, &domain.StorageError{Op: "save", Err: err}
	}

	s.mu.Lock()
	if rev > s.saved {
		s.saved = rev
	}
	s.mu.Unlock()
	s.logger.Debug("document saved", "revision", rev)
	return rev, nil
}

// Publish marks the document published and writes it through the publisher.
// It requires a signed-in user.
func (s *Session) Publish(ctx context.Context) error {
	return s.setPublished(ctx, true)
}

// Unpublish withdraws a published document.
func (s *Session) Unpublish(ctx context.Context) error {
	return s.setPublished(ctx, false)
}

func (s *Session) setPublished(ctx context.Context, published bool) error {
	if s.cfg.UserID == "" {
		return &domain.UnauthorizedError{Message: "sign in to publish documents"}
	}
	if s.cfg.Publisher == nil {
		return &domain.StorageError{Op: "publish", Err: errors.New("no publisher configured")}
	}

	st := s.State()
	st.Published = published
	doc, _, err := s.document(st)
	if err != nil {
		return err
	}
	if err := s.cfg.Publisher.Upsert(ctx, doc); err != nil {
		s.logger.Error("publish failed", "published", published, "error", err)
		return &domain.StorageError{Op: "publish", Err: err}
	}
	s.Dispatch(SetPublished{Published: published})
	s.logger.Info("publish state changed", "published", published)
	return nil
}
