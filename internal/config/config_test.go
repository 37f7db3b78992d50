package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "SUPABASE_URL", "TABLE_PREFIX", "AUTH_DISABLED", "STORE", "PORT", "MEDIA_BASE_URL", "AUTOSAVE_DELAY"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Store != "sqlite" || cfg.TablePrefix != "dev_" || cfg.Port != "8080" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.AuthDisabled {
		t.Error("auth should default to disabled in dev without Supabase")
	}
	if cfg.SupabaseJWKSURL != "" {
		t.Errorf("JWKS URL = %q", cfg.SupabaseJWKSURL)
	}
	if cfg.MediaBaseURL != "http://localhost:8080/media" {
		t.Errorf("MediaBaseURL = %q", cfg.MediaBaseURL)
	}
	if cfg.AutoSaveDelay != 2*time.Second {
		t.Errorf("AutoSaveDelay = %v", cfg.AutoSaveDelay)
	}
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("AUTH_DISABLED", "")
	t.Setenv("AUTOSAVE_DELAY", "500ms")
	t.Setenv("LOG_MAX_FILES", "not a number")

	cfg := Load()
	if cfg.TablePrefix != "prod_" {
		t.Errorf("TablePrefix = %q", cfg.TablePrefix)
	}
	if cfg.AuthDisabled {
		t.Error("auth must be enabled in prod")
	}
	if cfg.SupabaseJWKSURL != "https://abc.supabase.co/auth/v1/.well-known/jwks.json" {
		t.Errorf("JWKS URL = %q", cfg.SupabaseJWKSURL)
	}
	if cfg.AutoSaveDelay != 500*time.Millisecond {
		t.Errorf("AutoSaveDelay = %v", cfg.AutoSaveDelay)
	}
	if cfg.LogMaxFiles != 10 {
		t.Errorf("LogMaxFiles = %d", cfg.LogMaxFiles)
	}
}

func TestSetupLogFileRotates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"journal-2020-01-01T00-00-00.log", "journal-2020-01-02T00-00-00.log", "server-2020-01-01T00-00-00.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	f, err := SetupLogFile(dir, "journal", 2)
	if err != nil {
		t.Fatalf("SetupLogFile: %v", err)
	}
	f.Close()

	journals, _ := filepath.Glob(filepath.Join(dir, "journal-*.log"))
	if len(journals) != 2 {
		t.Errorf("journal logs = %v", journals)
	}
	if _, err := os.Stat(filepath.Join(dir, "journal-2020-01-01T00-00-00.log")); !os.IsNotExist(err) {
		t.Error("oldest journal log should be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "server-2020-01-01T00-00-00.log")); err != nil {
		t.Error("logs of other prefixes must be kept")
	}
}
