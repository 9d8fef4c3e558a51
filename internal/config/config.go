package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string

	RateLimitGlobal time.Duration
	RateLimitReply  time.Duration

	ViewSyncInterval  time.Duration
	ReconcileInterval time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	var err error
	cfg.RateLimitGlobal, err = time.ParseDuration(getEnv("RATE_LIMIT_GLOBAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_GLOBAL: %w", err)
	}
	cfg.RateLimitReply, err = time.ParseDuration(getEnv("RATE_LIMIT_REPLY", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REPLY: %w", err)
	}
	cfg.ViewSyncInterval, err = time.ParseDuration(getEnv("VIEW_SYNC_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid VIEW_SYNC_INTERVAL: %w", err)
	}
	cfg.ReconcileInterval, err = time.ParseDuration(getEnv("RECONCILE_INTERVAL", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
