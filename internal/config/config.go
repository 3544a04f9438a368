package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"

	EnhancerNone      = "none"
	EnhancerAnthropic = "anthropic"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	DataDir     string

	StorageBackend string
	RedisURL       string
	SQLitePath     string

	StartWorld string
	StartRoom  string

	Enhancer        string
	AnthropicAPIKey string
	ModelName       string
	EnhanceTimeout  time.Duration
	EnhanceCacheTTL time.Duration
}

// Load reads the configuration from the environment. Values in a .env file
// in the working directory are applied first when the file exists; real
// environment variables take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DataDir:     getEnv("DATA_DIR", "data"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendMemory)),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		SQLitePath:     getEnv("SQLITE_PATH", "mud.db"),

		StartWorld: getEnv("START_WORLD", "default"),
		StartRoom:  getEnv("START_ROOM", "forest_clearing_001"),

		Enhancer:        strings.ToLower(getEnv("ENHANCER", EnhancerNone)),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		ModelName:       getEnv("MODEL_NAME", "claude-3-5-haiku-latest"),
	}

	var err error
	if cfg.EnhanceTimeout, err = parseDuration("ENHANCE_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.EnhanceCacheTTL, err = parseDuration("ENHANCE_CACHE_TTL", "1h"); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	switch c.Enhancer {
	case EnhancerNone:
	case EnhancerAnthropic:
		if c.AnthropicAPIKey == "" {
			return errors.New("ANTHROPIC_API_KEY is required when ENHANCER=anthropic")
		}
	default:
		return fmt.Errorf("unknown ENHANCER %q", c.Enhancer)
	}
	if c.StartWorld == "" || c.StartRoom == "" {
		return errors.New("START_WORLD and START_ROOM are required")
	}
	return nil
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
