package config

import (
	"github.com/channelguard/channel-guard/internal/types"
)

const (
	defaultNotifierExchange   = "channel-guard"
	defaultNotifierRoutingKey = "channel.events"
)

// NotifierConfig configures the optional AMQP sink for change events.
// An empty URL disables it.
type NotifierConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing-key"`
}

func DefaultNotifierConfig() *NotifierConfig {
	return &NotifierConfig{
		Exchange:   defaultNotifierExchange,
		RoutingKey: defaultNotifierRoutingKey,
	}
}

func (cfg *NotifierConfig) Enabled() bool {
	return cfg.URL != ""
}

func (cfg *NotifierConfig) Validate() error {
	if !cfg.Enabled() {
		return nil
	}

	if cfg.Exchange == "" {
		return types.NewConfigError("notifier exchange is required when url is set")
	}

	return nil
}
