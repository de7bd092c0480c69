package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"jobtracker_server/pkg/apperr"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// DataDir holds the token file, the suggestion cache file and the sqlite database.
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// Database
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite3"`
	DatabaseURL    string `env:"DATABASE_URL"`
	MongoDBURL     string `env:"MONGODB_URL"`
	MongoDBName    string `env:"MONGODB_DATABASE" envDefault:"jobtracker"`
	RedisURL       string `env:"REDIS_URL"`

	// JWT (optional; API is open when empty)
	JWTSecret string `env:"JWT_SECRET"`

	// OAuth - Google
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GmailRedirectURL   string `env:"GMAIL_REDIRECT_URI" envDefault:"http://localhost:8080/api/auth/gmail/callback"`
	FrontendURL        string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	// LLM (any OpenAI-compatible endpoint)
	LLMAPIKey      string        `env:"LLM_API_KEY"`
	LLMBaseURL     string        `env:"LLM_BASE_URL"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMMaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"300"`
	LLMTemperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	// Sync pipeline
	SyncMaxMessages     int     `env:"SYNC_MAX_MESSAGES" envDefault:"100"`
	SyncFetchWindow     int     `env:"SYNC_FETCH_WINDOW" envDefault:"80"`
	SyncAcceptAnyWindow int     `env:"SYNC_ACCEPT_ANY_WINDOW" envDefault:"10"`
	SyncQuery           string  `env:"SYNC_QUERY" envDefault:"newer_than:90d"`
	MailboxFetchRPS     float64 `env:"MAILBOX_FETCH_RPS" envDefault:"10"`

	// Suggestion cache key for the Redis store
	CacheClientID string `env:"CACHE_CLIENT_ID" envDefault:"default"`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DatabaseDriver != "sqlite3" && cfg.DatabaseDriver != "postgres" {
		return nil, apperr.ConfigError(fmt.Sprintf("DATABASE_DRIVER must be sqlite3 or postgres, got %q", cfg.DatabaseDriver))
	}
	if cfg.DatabaseDriver == "postgres" && cfg.DatabaseURL == "" {
		return nil, apperr.ConfigError("DATABASE_URL is required for the postgres driver")
	}
	if cfg.SyncFetchWindow <= 0 {
		return nil, apperr.ConfigError("SYNC_FETCH_WINDOW must be positive")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GmailConfigured reports whether the OAuth client credentials are present.
func (c *Config) GmailConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// LLMConfigured reports whether a model API key is present.
func (c *Config) LLMConfigured() bool {
	return c.LLMAPIKey != ""
}

func (c *Config) TokenFile() string {
	return filepath.Join(c.DataDir, "gmail-token.json")
}

func (c *Config) SuggestionCacheFile() string {
	return filepath.Join(c.DataDir, "suggestions.json")
}

// SQLiteDSN is used when DATABASE_URL is empty and the driver is sqlite3.
func (c *Config) SQLiteDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return filepath.Join(c.DataDir, "applications.db") + "?_foreign_keys=on&_journal_mode=WAL"
}
