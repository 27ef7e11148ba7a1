package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default cookie and timing values; overridable through the environment.
const (
	DefaultPort       = "8080"
	DefaultSessionTTL = 72 * time.Hour
	DefaultTicketTTL  = 30 * 24 * time.Hour
	SessionCookieName = "eventdesk_session"
	devTicketSecret   = "eventdesk-dev-ticket-secret"
)

// Config holds all configuration for the application.
type Config struct {
	Environment string
	Port        string
	DBUrl       string

	CORSAllowedOrigins []string

	// SessionStoreKind selects the session backend: "postgres" or "redis".
	SessionStoreKind    string
	RedisAddr           string
	SessionTTL          time.Duration
	SessionCookieSecure bool

	// TicketSecret signs the QR ticket tokens.
	TicketSecret string
	TicketTTL    time.Duration

	EmailProvider string
	EmailFrom     string
	EmailFromName string

	AWSRegion             string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	SESInsecureSkipVerify bool

	ImageStoreKind  string
	S3Bucket        string
	S3PublicBaseURL string
}

// IsProduction reports whether the app runs with GO_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load loads configuration from environment variables.
// It attempts to load from a .env file if not in production; in production
// the .env file might not exist and we rely on system environment variables.
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:           env,
		Port:                  os.Getenv("PORT"),
		DBUrl:                 os.Getenv("DATABASE_URL"),
		SessionStoreKind:      os.Getenv("SESSION_STORE"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		SessionTTL:            hoursOrDefault("SESSION_TTL_HOURS", DefaultSessionTTL),
		SessionCookieSecure:   boolEnv("SESSION_COOKIE_SECURE"),
		TicketSecret:          os.Getenv("TICKET_SECRET"),
		TicketTTL:             hoursOrDefault("TICKET_TTL_HOURS", DefaultTicketTTL),
		EmailProvider:         os.Getenv("EMAIL_PROVIDER"),
		EmailFrom:             os.Getenv("EMAIL_FROM"),
		EmailFromName:         os.Getenv("EMAIL_FROM_NAME"),
		AWSRegion:             os.Getenv("AWS_REGION"),
		AWSAccessKeyID:        os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SESInsecureSkipVerify: boolEnv("SES_INSECURE_SKIP_VERIFY"),
		ImageStoreKind:        os.Getenv("IMAGE_STORE"),
		S3Bucket:              os.Getenv("S3_BUCKET"),
		S3PublicBaseURL:       os.Getenv("S3_PUBLIC_BASE_URL"),
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = strings.Split(origins, ",")
	}

	// Defaults
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.SessionStoreKind == "" {
		cfg.SessionStoreKind = "postgres"
	}
	if cfg.EmailProvider == "" {
		cfg.EmailProvider = "noop"
	}
	if cfg.ImageStoreKind == "" {
		cfg.ImageStoreKind = "noop"
	}
	if cfg.IsProduction() {
		cfg.SessionCookieSecure = true
	}

	// Every code path touches the store, so a missing DATABASE_URL is fatal
	// rather than defaulted.
	if cfg.DBUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SessionStoreKind == "redis" && cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required when SESSION_STORE=redis")
	}
	if cfg.TicketSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("TICKET_SECRET is required in production")
		}
		cfg.TicketSecret = devTicketSecret
	}

	return cfg, nil
}

// MustLoad is Load that exits the process on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func hoursOrDefault(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using default", key, s)
		return def
	}
	return time.Duration(n) * time.Hour
}

func boolEnv(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}
