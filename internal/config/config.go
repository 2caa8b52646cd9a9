package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Lookup provider connection
	ProviderURL    string
	ProviderAPIKey string

	// Auth
	APIKey string

	// Reader defaults
	Language string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Pagination for sources without geometry
	BandHeight   float64
	BandsPerPage int

	// Lookup cache
	CacheMaxEntries int
	CacheMaxBytes   int

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ProviderURL:    envOr("PROVIDER_URL", "http://localhost:8080"),
		ProviderAPIKey: os.Getenv("PROVIDER_API_KEY"),

		APIKey: os.Getenv("TAPREAD_API_KEY"),

		Language: envOr("READER_LANGUAGE", "en"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		BandHeight:   envFloat("BAND_HEIGHT", 28),
		BandsPerPage: envInt("BANDS_PER_PAGE", 24),

		CacheMaxEntries: envInt("CACHE_MAX_ENTRIES", 512),
		CacheMaxBytes:   envInt("CACHE_MAX_BYTES", 4194304), // 4MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.BandHeight <= 0 {
		cfg.BandHeight = 28
	}
	if cfg.BandsPerPage <= 0 {
		cfg.BandsPerPage = 24
	}
	if cfg.CacheMaxEntries <= 0 {
		cfg.CacheMaxEntries = 512
	}
	if cfg.CacheMaxBytes <= 0 {
		cfg.CacheMaxBytes = 4194304
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ProviderAPIKey == "" {
		return fmt.Errorf("PROVIDER_API_KEY is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("TAPREAD_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
