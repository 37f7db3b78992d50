package journal

import (
	"context"
	"errors"
	"fmt"

	"journal/internal/domain"
	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/outline"
	"journal/internal/session"
)

var errMediaDisabled = errors.New("media uploads are not configured")

// mediaService implements the MediaService interface
type mediaService struct {
	*Editor
}

// NewMediaService creates a new media service
func NewMediaService(editor *Editor) journalSvc.MediaService {
	return &mediaService{Editor: editor}
}

// Upload stores the file and attaches it to the bullet. The document lock is
// held for the whole upload so that the attachment lands in the same state
// that is saved.
func (s *mediaService) Upload(ctx context.Context, req *journalSvc.UploadRequest) (*outline.Attachment, error) {
	if err := validateUploadRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if s.media == nil {
		return nil, &domain.StorageError{Op: "upload", Err: errMediaDisabled}
	}

	var att outline.Attachment
	_, err := s.edit(ctx, req.UserID, req.DocumentID, func(sess *session.Session) error {
		_, ch, err := sess.Upload(ctx, req.Kind, req.BulletID, req.Filename, req.Data)
		if err != nil {
			return err
		}
		res := <-ch
		if res.Err != nil {
			return res.Err
		}
		att = res.Value
		return nil
	})
	if err != nil {
		if att.URL != "" {
			// stored but never saved
			scope := session.MediaScope(req.UserID, req.DocumentID)
			if rmErr := s.media.Remove(context.WithoutCancel(ctx), scope, att.URL); rmErr != nil {
				s.logger.Warn("failed to remove unsaved upload", "media_id", att.ID, "error", rmErr)
			}
		}
		return nil, err
	}

	s.logger.Info("media uploaded",
		"document_id", req.DocumentID,
		"media_id", att.ID,
		"kind", string(req.Kind),
		"size", len(req.Data),
	)
	return &att, nil
}

// Resize updates size and placement of an image or video
func (s *mediaService) Resize(ctx context.Context, userID, documentID, mediaID string, req *journalSvc.ResizeRequest) (*outline.Attachment, error) {
	if err := validateResizeRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var att outline.Attachment
	_, err := s.edit(ctx, userID, documentID, func(sess *session.Session) error {
		kind, ok := findMedia(sess.State(), mediaID)
		if !ok {
			return &domain.NotFoundError{Message: fmt.Sprintf("media %s not found", mediaID)}
		}
		sess.Dispatch(session.ResizeMedia{
			Kind:      kind,
			ID:        mediaID,
			Placement: placement(req.Width, req.Height, req.Top, req.Left),
		})
		att, _ = sess.State().Media(kind).Get(mediaID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// Detach removes an attachment from its document
func (s *mediaService) Detach(ctx context.Context, userID, documentID, mediaID string) error {
	_, err := s.edit(ctx, userID, documentID, func(sess *session.Session) error {
		kind, ok := findMedia(sess.State(), mediaID)
		if !ok {
			return &domain.NotFoundError{Message: fmt.Sprintf("media %s not found", mediaID)}
		}
		sess.Detach(ctx, kind, mediaID)
		return nil
	})
	return err
}

// findMedia returns the kind of the index holding mediaID.
func findMedia(st session.State, mediaID string) (outline.MediaKind, bool) {
	for _, kind := range []outline.MediaKind{outline.MediaImage, outline.MediaVideo} {
		if _, ok := st.Media(kind).Get(mediaID); ok {
			return kind, true
		}
	}
	return "", false
}
