package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppEnv          = "dev"
	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "boq.db"
	defaultSequenceLockTTL = "30s"
	defaultJWTTTL          = "12h"
)

type Config struct {
	AppEnv             string
	HTTPAddr           string
	DatabaseURL        string
	LogMode            string
	RedisAddress       string
	RedisPassword      string
	SequenceLockTTL    time.Duration
	JWTSecret          string
	JWTTTL             time.Duration
	CORSAllowedOrigins []string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:        strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", defaultAppEnv))),
		HTTPAddr:      strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr)),
		DatabaseURL:   strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL)),
		RedisAddress:  strings.TrimSpace(os.Getenv("REDIS_ADDRESS")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
	}
	cfg.LogMode = strings.TrimSpace(getEnv("LOG_MODE", cfg.AppEnv))
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	var err error
	cfg.SequenceLockTTL, err = parseDurationEnv("SEQUENCE_LOCK_TTL", defaultSequenceLockTTL)
	if err != nil {
		return nil, err
	}
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsesPostgres reports whether DatabaseURL names a postgres DSN.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// AuthEnabled reports whether mutating routes are guarded.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.SequenceLockTTL <= 0 {
		return fmt.Errorf("SEQUENCE_LOCK_TTL must be > 0")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if cfg.JWTSecret == "" {
			return fmt.Errorf("in prod/release JWT_SECRET must be set")
		}
		if !cfg.UsesPostgres() {
			return fmt.Errorf("in prod/release DATABASE_URL must be a postgres DSN")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
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
