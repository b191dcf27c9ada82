package config

import (
	"net/url"

	"github.com/channelguard/channel-guard/internal/types"
)

type DbConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"db-name"`
	Address  string `mapstructure:"address"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.Address == "" {
		return types.NewConfigError("database address is required")
	}

	if _, err := url.Parse(cfg.Address); err != nil {
		return types.NewConfigError("invalid database address: %v", err)
	}

	if cfg.DbName == "" {
		return types.NewConfigError("database name is required")
	}

	return nil
}
