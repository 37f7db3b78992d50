package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// LocalStore keeps media on the local filesystem under Dir. Files are
// expected to be served at BaseURL (see cmd/server, /media/).
type LocalStore struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, baseURL string, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL, logger: logger}, nil
}

// Dir is the root directory of stored files.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Upload(ctx context.Context, scope, filename string, data []byte) (string, error) {
	key, err := objectPath(scope, filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}
	tmp := full + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("write media: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("write media: %w", err)
	}

	s.logger.Debug("media stored", "key", key, "bytes", len(data))
	return s.baseURL + "/" + key, nil
}

// Remove deletes the file if it lies under scope. A file that is already
// gone is not an error.
func (s *LocalStore) Remove(ctx context.Context, scope, publicURL string) error {
	key, err := keyFromURL(s.baseURL, scope, publicURL)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key))); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove media: %w", err)
	}
	return nil
}
