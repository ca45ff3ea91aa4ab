package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	// Worker settings.
	WorkerID          string
	WorkerConcurrency int
	PollInterval      time.Duration
	ClaimTimeout      time.Duration
	ClaimBatchLimit   int

	// Retention cleanup.
	RetentionWindow time.Duration
	CleanupInterval time.Duration

	// Collaborators.
	RendererBaseURL string
	RendererTimeout time.Duration
	StoragePath     string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		WorkerID:          os.Getenv("WORKER_ID"),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		PollInterval:      time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 2)),
		ClaimTimeout:      time.Second * time.Duration(getEnvInt("CLAIM_TIMEOUT_SECONDS", 300)),
		ClaimBatchLimit:   getEnvInt("CLAIM_BATCH_LIMIT", 8),
		RetentionWindow:   time.Hour * time.Duration(getEnvInt("RETENTION_HOURS", 72)),
		CleanupInterval:   time.Minute * time.Duration(getEnvInt("CLEANUP_INTERVAL_MINUTES", 15)),
		RendererBaseURL:   getEnv("RENDERER_BASE_URL", "http://localhost:9090"),
		RendererTimeout:   time.Second * time.Duration(getEnvInt("RENDERER_TIMEOUT_SECONDS", 60)),
		StoragePath:       getEnv("STORAGE_PATH", "./storage"),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.WorkerID == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "worker"
		}
		cfg.WorkerID = fmt.Sprintf("%s-%d", host, os.Getpid())
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
