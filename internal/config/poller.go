package config

import (
	"time"

	"github.com/channelguard/channel-guard/internal/types"
)

const (
	defaultPollInterval   = 2 * time.Second
	defaultStatusInterval = 60 * time.Second
	defaultBackoffBase    = 1 * time.Second
	defaultBackoffMax     = 60 * time.Second
)

type PollerConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	StatusInterval time.Duration `mapstructure:"status-interval"`
	// BackoffBase doubles on every consecutive connectivity failure up to BackoffMax.
	BackoffBase time.Duration `mapstructure:"backoff-base"`
	BackoffMax  time.Duration `mapstructure:"backoff-max"`
}

func DefaultPollerConfig() *PollerConfig {
	return &PollerConfig{
		Interval:       defaultPollInterval,
		StatusInterval: defaultStatusInterval,
		BackoffBase:    defaultBackoffBase,
		BackoffMax:     defaultBackoffMax,
	}
}

func (cfg *PollerConfig) Validate() error {
	if cfg.Interval <= 0 {
		return types.NewConfigError("poller interval must be positive")
	}

	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = defaultStatusInterval
	}

	if cfg.BackoffBase <= 0 {
		return types.NewConfigError("backoff-base must be positive")
	}

	if cfg.BackoffMax < cfg.BackoffBase {
		return types.NewConfigError("backoff-max must not be lower than backoff-base")
	}

	return nil
}
