package media

import (
	"log/slog"

	"journal/internal/config"
)

// FromConfig returns the Supabase bucket store when one is configured and
// the local filesystem store otherwise. localDir is "" for the bucket store.
func FromConfig(cfg *config.Config, logger *slog.Logger) (store Store, localDir string, err error) {
	if cfg.UsesSupabaseStorage() {
		logger.Info("media storage: supabase", "bucket", cfg.SupabaseBucket)
		return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket, logger), "", nil
	}

	local, err := NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL, logger)
	if err != nil {
		return nil, "", err
	}
	logger.Info("media storage: local", "dir", local.Dir(), "base_url", cfg.MediaBaseURL)
	return local, local.Dir(), nil
}
