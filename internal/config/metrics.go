package config

import (
	"github.com/channelguard/channel-guard/internal/types"
)

const (
	defaultMetricsHost = "0.0.0.0"
	defaultMetricsPort = 2112
)

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Host: defaultMetricsHost,
		Port: defaultMetricsPort,
	}
}

func (cfg *MetricsConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return types.NewConfigError("metrics server port must be between 0 and 65535 (inclusive)")
	}

	return nil
}

func (cfg *MetricsConfig) GetMetricsPort() int {
	return cfg.Port
}
