package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string
	ContentDir  string

	// Gemini. The API key is only checked when the first related-sections lookup runs.
	GeminiAPIKey string
	GeminiModel  string
	GeminiMaxRPM int

	// Related-sections queue
	RelatedCooldown time.Duration
	RelatedTimeout  time.Duration
	RelatedCacheTTL time.Duration

	// Redis Configuration (optional second-level related cache)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Telemetry
	OTLPEndpoint     string
	TraceSampleRatio float64
	StatsInterval    time.Duration
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		ContentDir:  getEnv("CONTENT_DIR", "./content"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiMaxRPM: getEnvInt("GEMINI_MAX_RPM", 60),

		RelatedCooldown: time.Duration(getEnvInt("RELATED_COOLDOWN_MS", 1100)) * time.Millisecond,
		RelatedTimeout:  time.Duration(getEnvInt("RELATED_TIMEOUT_SECONDS", 30)) * time.Second,
		RelatedCacheTTL: time.Duration(getEnvInt("RELATED_CACHE_TTL_HOURS", 0)) * time.Hour,

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TraceSampleRatio: getEnvFloat64("TRACE_SAMPLE_RATIO", 0.1),
		StatsInterval:    time.Duration(getEnvInt("STATS_INTERVAL_SECONDS", 300)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("PORT must be a valid TCP port, got %q", c.Port)
	}
	if c.RelatedCooldown <= 0 {
		return fmt.Errorf("RELATED_COOLDOWN_MS must be positive")
	}
	if c.RelatedTimeout < 0 {
		return fmt.Errorf("RELATED_TIMEOUT_SECONDS must not be negative")
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("STATS_INTERVAL_SECONDS must be positive")
	}
	if c.GeminiMaxRPM <= 0 {
		return fmt.Errorf("GEMINI_MAX_RPM must be positive")
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATIO must be between 0 and 1, got %v", c.TraceSampleRatio)
	}
	if c.ContentDir == "" {
		return fmt.Errorf("CONTENT_DIR is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
