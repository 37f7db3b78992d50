package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Storage backend: "postgres" or "sqlite"
	Store       string
	DatabaseURL string
	SQLitePath  string
	TablePrefix string

	SupabaseURL     string
	SupabaseKey     string
	SupabaseBucket  string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json

	// Local media storage, used when no Supabase bucket is configured
	MediaDir     string
	MediaBaseURL string

	CORSOrigins string

	// AuthDisabled skips JWT verification and runs every request as DevUserID
	AuthDisabled bool
	DevUserID    string

	AutoSaveDelay time.Duration

	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := strings.TrimSuffix(getEnv("SUPABASE_URL", ""), "/")

	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	port := getEnv("PORT", "8080")

	return &Config{
		Port:            port,
		Environment:     env,
		Store:           getEnv("STORE", "sqlite"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "data/journal.db"),
		TablePrefix:     getTablePrefix(env),
		SupabaseURL:     supabaseURL,
		SupabaseKey:     getEnv("SUPABASE_KEY", ""),
		SupabaseBucket:  getEnv("SUPABASE_BUCKET", ""),
		SupabaseJWKSURL: jwksURL,
		MediaDir:        getEnv("MEDIA_DIR", "data/media"),
		MediaBaseURL:    strings.TrimSuffix(getEnv("MEDIA_BASE_URL", "http://localhost:"+port+"/media"), "/"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		AuthDisabled:    getEnv("AUTH_DISABLED", defaultAuthDisabled(env, jwksURL)) == "true",
		DevUserID:       getEnv("DEV_USER_ID", "local"),
		AutoSaveDelay:   getDuration("AUTOSAVE_DELAY", 2*time.Second),
		LogDir:          getEnv("LOG_DIR", "logs"),
		LogMaxFiles:     getInt("LOG_MAX_FILES", 10),
	}
}

// UsesSupabaseStorage reports whether media goes to a Supabase bucket.
func (c *Config) UsesSupabaseStorage() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != "" && c.SupabaseBucket != ""
}

// defaultAuthDisabled turns auth off in dev when no JWKS endpoint is known
func defaultAuthDisabled(env, jwksURL string) string {
	if env == "dev" && jwksURL == "" {
		return "true"
	}
	return "false"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
