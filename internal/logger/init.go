package logger

import (
	"github.com/Backland-Labs/hnrflow/internal/config"
)

// InitializeFromConfig sets up the global logger based on the configuration.
// Verbosity picks the default level; HNRFLOW_LOG_* variables refine it.
func InitializeFromConfig(cfg *config.Config) *Logger {
	var level Level

	switch cfg.Verbosity {
	case config.VerbosityDebug:
		level = DebugLevel
	case config.VerbosityVerbose:
		level = InfoLevel
	default:
		level = WarnLevel
	}

	logger := NewFromConfig(ConfigFromEnv(level), nil)
	SetLogger(logger)
	return logger
}
