package config

import (
	"github.com/rs/zerolog"

	"github.com/channelguard/channel-guard/internal/types"
)

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File enables a rotating log file next to the console output.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max-size-mb"`
	MaxBackups int    `mapstructure:"max-backups"`
	MaxAgeDays int    `mapstructure:"max-age-days"`
}

func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level:      zerolog.InfoLevel.String(),
		File:       "~/channel_guard/logs/channel_guard.log",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

func (cfg *LogConfig) Validate() error {
	if _, err := zerolog.ParseLevel(cfg.Level); err != nil {
		return types.NewConfigError("invalid log level %q", cfg.Level)
	}

	if cfg.File != "" && cfg.MaxSizeMB <= 0 {
		return types.NewConfigError("log max-size-mb must be positive")
	}

	return nil
}
