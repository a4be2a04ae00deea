// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Rule tables
	RulesFile  string
	FieldCount int

	// Status line settings
	Separator string
	Uniquify  bool
	HideEmpty bool
	Prejoin   bool

	// Batch settings
	WorkerPoolSize int

	// Audit sink
	AuditEnabled bool
	Postgres     *PostgresConfig

	// Result cache
	CacheEnabled bool
	CacheTTL     time.Duration
	Redis        *RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Default values
		RulesFile:      getEnv("STATUSLINE_RULES_FILE", ""),
		FieldCount:     getEnvAsInt("STATUSLINE_FIELD_COUNT", 7),
		Separator:      getEnvRaw("STATUSLINE_SEPARATOR", ", "),
		Uniquify:       getEnvAsBool("STATUSLINE_UNIQUIFY", true),
		HideEmpty:      getEnvAsBool("STATUSLINE_HIDE_EMPTY", false),
		Prejoin:        getEnvAsBool("STATUSLINE_PREJOIN", false),
		WorkerPoolSize: getEnvAsInt("WORKER_POOL_SIZE", 0), // 0 means use runtime.NumCPU()
		AuditEnabled:   getEnvAsBool("AUDIT_ENABLED", false),
		CacheEnabled:   getEnvAsBool("CACHE_ENABLED", false),
		CacheTTL:       time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 86400)) * time.Second,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	// Database settings are only required when the audit sink is on
	if cfg.AuditEnabled {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	}

	if cfg.CacheEnabled {
		cfg.Redis = LoadRedisConfig()
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.FieldCount < 3 {
		return errors.New("field count must be at least 3 (country, date, creator)")
	}

	if c.Separator == "" {
		return errors.New("separator cannot be empty")
	}

	if c.WorkerPoolSize < 0 {
		return errors.New("worker pool size cannot be negative")
	}

	if c.AuditEnabled && c.Postgres == nil {
		return errors.New("postgreSQL configuration is required when auditing is enabled")
	}

	if c.CacheEnabled {
		if c.Redis == nil {
			return errors.New("redis configuration is required when caching is enabled")
		}
		if c.CacheTTL < 0 {
			return errors.New("cache TTL cannot be negative")
		}
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return errors.New("log format must be json or console")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvRaw keeps surrounding whitespace, which matters for separators
func getEnvRaw(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
