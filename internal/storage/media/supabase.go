package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/goccy/go-json"
)

// SupabaseStore keeps media in a public Supabase Storage bucket.
type SupabaseStore struct {
	supabaseURL string
	serviceKey  string
	bucket      string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewSupabaseStore creates a Storage API client. Requires the service role
// key (SUPABASE_KEY) to write to the bucket.
func NewSupabaseStore(supabaseURL, serviceKey, bucket string, logger *slog.Logger) *SupabaseStore {
	return &SupabaseStore{
		supabaseURL: supabaseURL,
		serviceKey:  serviceKey,
		bucket:      bucket,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

func (s *SupabaseStore) publicBase() string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s", s.supabaseURL, s.bucket)
}

func (s *SupabaseStore) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
}

// Upload stores the object, replacing an existing one with the same key.
func (s *SupabaseStore) Upload(ctx context.Context, scope, filename string, data []byte) (string, error) {
	key, err := objectPath(scope, filename)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.supabaseURL, s.bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	s.authorize(req)
	contentType := mime.TypeByExtension(path.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	s.logger.Debug("media uploaded", "bucket", s.bucket, "key", key, "bytes", len(data))
	return s.publicBase() + "/" + key, nil
}

type removeRequest struct {
	Prefixes []string `json:"prefixes"`
}

// Remove deletes the object behind publicURL if it lies under scope.
func (s *SupabaseStore) Remove(ctx context.Context, scope, publicURL string) error {
	key, err := keyFromURL(s.publicBase(), scope, publicURL)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(removeRequest{Prefixes: []string{key}})
	if err != nil {
		return fmt.Errorf("failed to marshal remove request: %w", err)
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s", s.supabaseURL, s.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create remove request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to remove media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("remove failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
