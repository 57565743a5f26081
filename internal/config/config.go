package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultAppEnv          = "dev"
	defaultDatabaseURL     = "hotel.db"
	defaultHTTPAddr        = ":8080"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultJWTTTL          = "24h"
	defaultCartTTL         = "24h"
	defaultSweepInterval   = "1h"
	defaultSweepEnabled    = "true"
	defaultTxRetryAttempts = "3"
	defaultMediaDir        = "./media"
	defaultLogLevel        = "info"
	defaultCORSOrigins     = "http://localhost:3000,http://localhost:5173"
)

type Config struct {
	AppEnv          string
	DatabaseURL     string
	HTTPAddr        string
	JWTSecret       string
	JWTTTL          time.Duration
	CartTTL         time.Duration
	SweepInterval   time.Duration
	SweepEnabled    bool
	TxRetryAttempts int
	MediaDir        string
	RabbitMQURL     string
	LogLevel        logrus.Level
	CORSOrigins     []string

	// Worker login is disabled while either is empty.
	WorkerEmail        string
	WorkerPasswordHash string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = defaultAppEnv
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.MediaDir = strings.TrimSpace(getEnv("MEDIA_DIR", defaultMediaDir))
	cfg.RabbitMQURL = strings.TrimSpace(os.Getenv("RABBITMQ_URL"))
	cfg.SweepEnabled = parseBoolEnv("SWEEP_ENABLED", defaultSweepEnabled)
	cfg.CORSOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins))

	cfg.WorkerEmail = strings.ToLower(strings.TrimSpace(os.Getenv("WORKER_EMAIL")))
	cfg.WorkerPasswordHash = strings.TrimSpace(os.Getenv("WORKER_PASSWORD_HASH"))

	cfg.SMTPHost = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	cfg.SMTPPort = strings.TrimSpace(os.Getenv("SMTP_PORT"))
	cfg.SMTPUsername = strings.TrimSpace(os.Getenv("SMTP_USERNAME"))
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.SMTPFrom = strings.TrimSpace(os.Getenv("SMTP_FROM"))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.CartTTL, err = parseDurationEnv("CART_TTL", defaultCartTTL)
	if err != nil {
		return nil, err
	}

	cfg.SweepInterval, err = parseDurationEnv("SWEEP_INTERVAL", defaultSweepInterval)
	if err != nil {
		return nil, err
	}

	cfg.TxRetryAttempts, err = parseIntEnv("TX_RETRY_ATTEMPTS", defaultTxRetryAttempts)
	if err != nil {
		return nil, err
	}

	levelRaw := strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.LogLevel, err = logrus.ParseLevel(levelRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL value %q: %w", levelRaw, err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.CartTTL <= 0 {
		return fmt.Errorf("CART_TTL must be > 0")
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if cfg.TxRetryAttempts < 1 {
		return fmt.Errorf("TX_RETRY_ATTEMPTS must be >= 1")
	}
	if (cfg.WorkerEmail == "") != (cfg.WorkerPasswordHash == "") {
		return fmt.Errorf("WORKER_EMAIL and WORKER_PASSWORD_HASH must be set together")
	}
	if cfg.SMTPHost != "" && cfg.SMTPPort == "" {
		return fmt.Errorf("SMTP_PORT is required when SMTP_HOST is set")
	}

	if cfg.IsProdLike() {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if !strings.Contains(cfg.DatabaseURL, "://") {
			return fmt.Errorf("in prod/release DATABASE_URL must point to a database server")
		}
	}

	return nil
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
