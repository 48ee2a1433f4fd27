// Package config loads process-wide settings once at startup. The resulting
// Config is immutable and passed explicitly into each component.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the itemvault server.
type Config struct {
	ProjectName string
	Addr        string
	DBPath      string
	ServerHost  string
	CORSOrigins []string

	// SecretKey signs access and reset tokens. Rotating it invalidates all
	// outstanding tokens.
	SecretKey      string
	AccessTokenTTL time.Duration
	ResetTokenTTL  time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPTLS      bool
	SMTPSSL      bool
	FromEmail    string
	FromName     string

	FirstSuperuser         string
	FirstSuperuserPassword string
	OpenRegistration       bool
}

// EmailsEnabled reports whether outbound email is configured.
func (c *Config) EmailsEnabled() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}

// Load reads configuration from a .env file (if present) overlaid by the
// environment. Missing optional values fall back to development defaults.
func Load() (*Config, error) {
	// Load .env if it exists; absence is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env", "error", err)
	}

	cfg := &Config{
		ProjectName: getEnv("PROJECT_NAME", "Itemvault"),
		Addr:        getEnv("LISTEN_ADDR", ":8080"),
		DBPath:      getEnv("DB_PATH", "itemvault.sqlite3"),
		ServerHost:  getEnv("SERVER_HOST", "http://localhost:8080"),

		SecretKey:      os.Getenv("SECRET_KEY"),
		AccessTokenTTL: time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24*8)) * time.Minute,
		ResetTokenTTL:  time.Duration(getEnvInt("EMAIL_RESET_TOKEN_EXPIRE_HOURS", 48)) * time.Hour,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPTLS:      getEnvBool("SMTP_TLS", true),
		SMTPSSL:      getEnvBool("SMTP_SSL", false),
		FromEmail:    os.Getenv("EMAILS_FROM_EMAIL"),
		FromName:     getEnv("EMAILS_FROM_NAME", getEnv("PROJECT_NAME", "Itemvault")),

		FirstSuperuser:         getEnv("FIRST_SUPERUSER", "admin@example.com"),
		FirstSuperuserPassword: getEnv("FIRST_SUPERUSER_PASSWORD", "changethis"),
		OpenRegistration:       getEnvBool("USERS_OPEN_REGISTRATION", true),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, strings.TrimRight(o, "/"))
			}
		}
	}

	// Auto-generate a secret if none is configured. Tokens will be
	// invalidated on restart.
	if cfg.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating secret key: %w", err)
		}
		cfg.SecretKey = hex.EncodeToString(key)
		slog.Warn("no SECRET_KEY configured, generated a random one; tokens will not survive restarts")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", v)
		return fallback
	}
	return b
}
