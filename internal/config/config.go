// Package config provides configuration management for the docugen server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/docugen/docugen/internal/cache"
)

// Config holds all configuration for the docugen server.
type Config struct {
	// ServerAddr is the address the HTTP server listens on (e.g., ":8000").
	ServerAddr string

	// DataDir is the directory for persistent data (SQLite DB, etc.).
	DataDir string

	// DatabasePath is the full path to the SQLite job database file.
	DatabasePath string

	// GitHubToken is the personal access token for GitHub API operations.
	// Optional; unauthenticated requests get a much lower rate limit.
	GitHubToken string

	// Summarizer provider API keys. DOCUGEN_MODEL additionally overrides
	// the provider's default model.
	GoogleAPIKey string
	OpenAIAPIKey string

	// FileBudget caps how many repository files feed into one document.
	FileBudget int

	// FetchWorkers bounds concurrent file downloads per repository.
	FetchWorkers int

	// Cache tuning for fetched file contents.
	CacheEnabled    bool
	CacheMaxEntries int
	CacheTTL        time.Duration
	CacheMinScore   int

	// CORS origins allowed to call the API. "*" allows all.
	AllowedOrigins []string

	// Slack integration (optional). Completion notices only.
	SlackBotToken string
	SlackChannel  string

	// Telegram integration (optional). Completion notices only.
	TelegramBotToken string
	TelegramChatID   int64
}

// Load creates a Config from environment variables with sensible defaults.
func Load() (*Config, error) {
	dataDir := envOr("DOCUGEN_DATA_DIR", defaultDataDir())
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	cfg := &Config{
		ServerAddr:   envOr("DOCUGEN_ADDR", ":8000"),
		DataDir:      dataDir,
		DatabasePath: filepath.Join(dataDir, "docugen.db"),
		GitHubToken:  os.Getenv("GITHUB_TOKEN"),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		FileBudget:   envOrInt("DOCUGEN_FILE_BUDGET", 10),
		FetchWorkers: envOrInt("DOCUGEN_FETCH_WORKERS", 5),

		CacheEnabled:    envOrBool("DOCUGEN_CACHE_ENABLED", true),
		CacheMaxEntries: envOrInt("DOCUGEN_CACHE_MAX_ENTRIES", 20),
		CacheTTL:        envOrDuration("DOCUGEN_CACHE_TTL", 24*time.Hour),
		CacheMinScore:   envOrInt("DOCUGEN_CACHE_MIN_SCORE", 3),

		AllowedOrigins: []string{envOr("DOCUGEN_ALLOWED_ORIGINS", "*")},

		SlackBotToken:    os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannel:     os.Getenv("SLACK_CHANNEL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   envOrInt64("TELEGRAM_CHAT_ID", 0),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.GoogleAPIKey == "" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("at least one of GOOGLE_API_KEY or OPENAI_API_KEY is required")
	}
	return nil
}

// CacheConfig builds the file cache settings from the loaded values.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Enabled:    c.CacheEnabled,
		MaxEntries: c.CacheMaxEntries,
		TTL:        c.CacheTTL,
		MinScore:   c.CacheMinScore,
	}
}

// SlackEnabled returns true if Slack notifications are configured.
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackChannel != ""
}

// TelegramEnabled returns true if Telegram notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envOrBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docugen"
	}
	return filepath.Join(home, ".docugen")
}
