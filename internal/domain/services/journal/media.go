package journal

import (
	"context"

	"journal/internal/outline"
)

// MediaService manages images and videos attached to bullets
type MediaService interface {
	// Upload stores a file and attaches it to a bullet
	Upload(ctx context.Context, req *UploadRequest) (*outline.Attachment, error)

	// Resize replaces an attachment's size and placement
	Resize(ctx context.Context, userID, documentID, mediaID string, req *ResizeRequest) (*outline.Attachment, error)

	// Detach removes an attachment; storage cleanup is best effort
	Detach(ctx context.Context, userID, documentID, mediaID string) error
}

// UploadRequest represents a media upload
type UploadRequest struct {
	UserID     string
	DocumentID string
	BulletID   string
	Kind       outline.MediaKind
	Filename   string
	Data       []byte
}

// ResizeRequest sets size and placement; nil height means automatic
type ResizeRequest struct {
	Width  int  `json:"width"`
	Height *int `json:"height,omitempty"`
	Top    *int `json:"top,omitempty"`
	Left   *int `json:"left,omitempty"`
}
