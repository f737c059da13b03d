// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAdminPassword is the seed password used when ADMIN_PASSWORD is unset.
// It is refused in production.
const DefaultAdminPassword = "buildgreatapps"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Persistence
	DatabasePath string
	UploadDir    string
	MaxUploadMB  int64

	// CORS
	ClientOrigin string

	// TrustProxy keys the login rate limit on X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that sets them.
	TrustProxy bool

	// Seed admin account
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Session tokens
	JWTSecret  string
	SessionTTL time.Duration

	// Valkey (Redis-compatible) response cache. Empty address disables it.
	ValkeyAddr     string
	ValkeyPassword string
	CacheTTL       time.Duration

	// Media storage backend: "local" or "s3"
	MediaStorage string
	S3Endpoint   string
	S3Region     string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	S3PublicURL  string

	// Content client settings (alternate read path and CLI)
	Source SourceConfig
}

// SourceConfig selects and configures the content data source used by the
// client data layer.
type SourceConfig struct {
	APIBaseURL       string
	WordPressBaseURL string
	UseMockData      bool
	Timeout          time.Duration
}

// Load reads configuration from a .env file (when present) and the
// environment, applying development defaults. It does not enforce values
// only the HTTP server needs; call Validate for that.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("PORT", "4000"),
		Env:  envOrDefault("APP_ENV", "development"),

		DatabasePath: envOrDefault("DATABASE_PATH", "data/blog.db"),
		UploadDir:    envOrDefault("UPLOAD_DIR", "uploads"),

		ClientOrigin: envOrDefault("CLIENT_ORIGIN", "http://localhost:5173"),

		AdminEmail:    envOrDefault("ADMIN_EMAIL", "alan@alananaya.dev"),
		AdminPassword: envOrDefault("ADMIN_PASSWORD", DefaultAdminPassword),
		AdminName:     envOrDefault("ADMIN_NAME", "Alan Anaya"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		ValkeyAddr:     os.Getenv("VALKEY_ADDR"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		MediaStorage: envOrDefault("MEDIA_STORAGE", "local"),
		S3Endpoint:   os.Getenv("S3_ENDPOINT"),
		S3Region:     envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey:  os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:  os.Getenv("S3_SECRET_KEY"),
		S3Bucket:     envOrDefault("S3_BUCKET", "folio-media"),
		S3PublicURL:  os.Getenv("S3_PUBLIC_URL"),

		Source: SourceConfig{
			APIBaseURL:       envOrDefault("API_BASE_URL", "http://localhost:4000"),
			WordPressBaseURL: strings.TrimRight(os.Getenv("WORDPRESS_BASE_URL"), "/"),
		},
	}

	var err error
	if cfg.MaxUploadMB, err = envInt("MAX_UPLOAD_MB", 50); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = envDuration("SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Source.Timeout, err = envDuration("SOURCE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Source.UseMockData, err = envBool("USE_MOCK_DATA", false); err != nil {
		return nil, err
	}
	if cfg.TrustProxy, err = envBool("TRUST_PROXY", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values the HTTP server cannot run without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	switch c.MediaStorage {
	case "local":
	case "s3":
		if c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			return errors.New("MEDIA_STORAGE=s3 requires S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown MEDIA_STORAGE %q (want local or s3)", c.MediaStorage)
	}
	if c.IsProduction() && c.AdminPassword == DefaultAdminPassword {
		return errors.New("ADMIN_PASSWORD must be set in production")
	}
	return nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive integer", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive duration", key, v)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: want true or false", key, v)
	}
	return b, nil
}
