package logger

import (
	"os"
	"strings"
)

// Config holds logger configuration
type Config struct {
	Level      Level
	Format     string // "console" or "json"
	Caller     bool   // Include caller information
	Stacktrace string // Level at which to include stack traces
}

// ConfigFromEnv creates a logger configuration from environment variables.
// The level defaults to fallback unless HNRFLOW_LOG_LEVEL is set.
func ConfigFromEnv(fallback Level) *Config {
	cfg := &Config{
		Level:      fallback,
		Format:     "console",
		Stacktrace: "panic",
	}

	if levelStr := os.Getenv("HNRFLOW_LOG_LEVEL"); levelStr != "" {
		cfg.Level = LevelFromString(levelStr)
	}

	if format := os.Getenv("HNRFLOW_LOG_FORMAT"); format != "" {
		cfg.Format = strings.ToLower(format)
	}

	cfg.Caller = os.Getenv("HNRFLOW_LOG_CALLER") == "true"

	if stacktrace := os.Getenv("HNRFLOW_LOG_STACKTRACE"); stacktrace != "" {
		cfg.Stacktrace = strings.ToLower(stacktrace)
	}

	return cfg
}

// IsDevelopment returns true if the logger is configured for development mode
func (c *Config) IsDevelopment() bool {
	return c.Format != "json"
}
