package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"nutrisnap-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string   `env:"PORT" envDefault:"8080"`
	CORSAllowOrigin []string `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	Env             string   `env:"ENV" envDefault:"dev"`
	DatabaseURL     string   `env:"DATABASE_URL"`
	AutoMigrate     bool     `env:"AUTO_MIGRATE" envDefault:"true"`

	ObjectStoreType string `env:"OBJECT_STORE" envDefault:"local"`
	LocalStoreDir   string `env:"LOCAL_STORE_DIR" envDefault:"./data/meal-images"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080/api/v1/media"`
	AWSRegion       string `env:"AWS_REGION"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3Prefix        string `env:"S3_PREFIX"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`

	AnalysisURL            string   `env:"ANALYSIS_URL"`
	AnalysisTimeoutSeconds int      `env:"ANALYSIS_TIMEOUT_SECONDS" envDefault:"0"`
	AnalysisAuthHeader     string   `env:"ANALYSIS_AUTH_HEADER"`
	AnalysisAuthToken      string   `env:"ANALYSIS_AUTH_TOKEN"`
	AnalysisOAuthClientID  string   `env:"ANALYSIS_OAUTH_CLIENT_ID"`
	AnalysisOAuthSecret    string   `env:"ANALYSIS_OAUTH_CLIENT_SECRET"`
	AnalysisOAuthTokenURL  string   `env:"ANALYSIS_OAUTH_TOKEN_URL"`
	AnalysisOAuthScopes    []string `env:"ANALYSIS_OAUTH_SCOPES" envSeparator:","`

	CacheStore string `env:"CACHE_STORE" envDefault:"file"`
	CacheDir   string `env:"CACHE_DIR" envDefault:"./data/cache"`
	CachePath  string `env:"CACHE_SQLITE_PATH" envDefault:"./data/cache.db"`

	JWTSecret string `env:"JWT_SECRET"`

	ScanRatePerMinute float64 `env:"SCAN_RATE_PER_MINUTE" envDefault:"6"`
	ScanBurst         int     `env:"SCAN_BURST" envDefault:"3"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Normalize()

	if cfg.Env == "production" && cfg.DatabaseURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": cfg.Env})
	}
	return cfg, nil
}

// Normalize canonicalizes enumerated values and trims list entries.
func (c *Config) Normalize() {
	c.Env = normalizeEnv(c.Env)
	c.ObjectStoreType = normalizeStoreType(c.ObjectStoreType)
	c.CacheStore = normalizeCacheStore(c.CacheStore)
	c.CORSAllowOrigin = trimAll(c.CORSAllowOrigin)
	c.AnalysisOAuthScopes = trimAll(c.AnalysisOAuthScopes)
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
	c.S3PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.S3PublicBaseURL), "/")
}

// AnalysisTimeout is zero when the transport default applies.
func (c Config) AnalysisTimeout() time.Duration {
	if c.AnalysisTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.AnalysisTimeoutSeconds) * time.Second
}

// IsDevLike reports whether relaxed local defaults are allowed.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func trimAll(raw []string) []string {
	var out []string
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeCacheStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "memory":
		return "memory"
	case "sqlite":
		return "sqlite"
	default:
		return "file"
	}
}
