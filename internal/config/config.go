package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Promotion modes
const (
	PromotionStepwise = "stepwise" // sequential remote steps, no rollback
	PromotionAtomic   = "atomic"   // single database transaction
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string
	SeedDevData bool // insert sample submissions and newsletters on startup

	// Session
	SessionSecret    string        // Used for signing cookies (min 32 chars)
	RedisURL         string        // Optional session storage; in-memory when empty
	ReviewSessionTTL time.Duration // Idle lifetime of an operator's review session

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Logging
	LogLevel string
	LogFile  string // Rotated JSON log file; stdout only when empty

	// Review
	PromotionMode string // "stepwise" or "atomic"

	// SMTP
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPSSL      bool // implicit TLS (port 465)

	// Email notification toggles
	EmailNotifySubmitter bool

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "Newsletter Review"
	SiteTagline string // env: SITE_TAGLINE
}

// Load reads configuration from a .env file (if present) and environment variables
// with sensible defaults.
func Load() *Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	return &Config{
		Env:              getEnv("ENV", "development"),
		ServerAddr:       getEnv("SERVER_ADDR", ":3000"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/newsreview?sslmode=disable"),
		SeedDevData:      getEnv("SEED_DEV_DATA", "") != "",
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		RedisURL:         getEnv("REDIS_URL", ""),
		ReviewSessionTTL: getEnvDuration("REVIEW_SESSION_TTL", 2*time.Hour),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
		PromotionMode:    getEnv("PROMOTION_MODE", PromotionStepwise),

		SMTPEnabled:  getEnv("SMTP_ENABLED", "") != "",
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Newsletter Review"),
		SMTPSSL:      getEnv("SMTP_SSL", "") != "",

		EmailNotifySubmitter: getEnv("EMAIL_NOTIFY_SUBMITTER", "") != "",

		SiteTitle:   getEnv("SITE_TITLE", "Newsletter Review"),
		SiteTagline: getEnv("SITE_TAGLINE", "Cycle through newsletter submissions and publish the good ones"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is switched on and minimally configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsAtomicPromotion returns true if promotions run inside one database transaction.
func (c *Config) IsAtomicPromotion() bool {
	return c.PromotionMode == PromotionAtomic
}
