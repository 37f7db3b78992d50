// Package media stores uploaded images and videos and hands back the public
// URL under which they are served.
package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Store uploads and removes media files.
type Store interface {
	// Upload stores data as scope/filename and returns its public URL.
	Upload(ctx context.Context, scope, filename string, data []byte) (string, error)

	// Remove deletes the object behind a URL returned by Upload. The object
	// must live under scope; anything else fails with ErrForeignURL.
	Remove(ctx context.Context, scope, publicURL string) error
}

// ErrForeignURL is returned by Remove for URLs the store did not issue or
// that point outside the caller's scope.
var ErrForeignURL = errors.New("url does not belong to this store")

// objectPath joins and validates a storage key.
func objectPath(scope, filename string) (string, error) {
	key := path.Clean(path.Join(scope, filename))
	if key == "." || strings.HasPrefix(key, "../") || strings.HasPrefix(key, "/") || key == ".." {
		return "", fmt.Errorf("invalid object path %q", path.Join(scope, filename))
	}
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("invalid file name %q", filename)
	}
	return key, nil
}

// keyFromURL strips base from a public URL and returns the object key,
// which must lie under scope.
func keyFromURL(base, scope, publicURL string) (string, error) {
	prefix := strings.TrimSuffix(base, "/") + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, publicURL)
	}
	key := path.Clean(strings.TrimPrefix(publicURL, prefix))
	if key == "." || key == ".." || strings.HasPrefix(key, "../") {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, publicURL)
	}
	scope = path.Clean(scope)
	if scope == "." || scope == ".." || strings.HasPrefix(scope, "../") || !strings.HasPrefix(key, scope+"/") {
		return "", fmt.Errorf("%w: %s is outside %s", ErrForeignURL, publicURL, scope)
	}
	return key, nil
}
