package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries the full server configuration. Compression parameters are
// deployment-fixed here and never user-supplied per request.
type Config struct {
	Host            string
	Port            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxUploadSize   int64
	TempDir         string

	// WebP re-encoder settings
	Quality int
	Effort  int

	// Upper bound on concurrent encodes; 0 means one per CPU
	MaxConcurrentEncodes int
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:                 getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                 getEnvOrDefault("PORT", "8080"),
		RequestTimeout:       parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:      parseDurationOrDefault("SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxUploadSize:        parseIntOrDefault("MAX_UPLOAD_SIZE", 25*1024*1024), // 25MB
		TempDir:              getEnvOrDefault("UPLOAD_TEMP_DIR", os.TempDir()),
		Quality:              int(parseIntOrDefault("WEBP_QUALITY", 30)),
		Effort:               int(parseIntOrDefault("WEBP_EFFORT", 6)),
		MaxConcurrentEncodes: int(parseIntOrDefault("MAX_CONCURRENT_ENCODES", 0)),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", cfg.MaxUploadSize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, shutdown=%s)",
			cfg.RequestTimeout, cfg.ShutdownTimeout)
	}
	if cfg.Quality < 0 || cfg.Quality > 100 {
		return nil, fmt.Errorf("WEBP_QUALITY must be in [0,100] (got %d)", cfg.Quality)
	}
	if cfg.Effort < 0 || cfg.Effort > 6 {
		return nil, fmt.Errorf("WEBP_EFFORT must be in [0,6] (got %d)", cfg.Effort)
	}
	if cfg.MaxConcurrentEncodes < 0 {
		return nil, fmt.Errorf("MAX_CONCURRENT_ENCODES must be >= 0 (got %d)", cfg.MaxConcurrentEncodes)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
