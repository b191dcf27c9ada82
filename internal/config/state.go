package config

import (
	"github.com/channelguard/channel-guard/internal/types"
)

type StateBackend string

const (
	StateBackendFile  StateBackend = "file"
	StateBackendMongo StateBackend = "mongo"

	defaultStatePath = "~/channel_guard/.state/channel_state.json"
	defaultDbName    = "channel-guard"
)

type StateConfig struct {
	Backend StateBackend `mapstructure:"backend"`
	// Path of the shared JSON state file, used by the file backend.
	Path string   `mapstructure:"path"`
	Db   DbConfig `mapstructure:"db"`
}

func DefaultStateConfig() *StateConfig {
	return &StateConfig{
		Backend: StateBackendFile,
		Path:    defaultStatePath,
		Db: DbConfig{
			DbName: defaultDbName,
		},
	}
}

func (cfg *StateConfig) Validate() error {
	switch cfg.Backend {
	case StateBackendFile:
		if cfg.Path == "" {
			return types.NewConfigError("state path cannot be empty")
		}
	case StateBackendMongo:
		return cfg.Db.Validate()
	default:
		return types.NewConfigError("unsupported state backend %q", cfg.Backend)
	}

	return nil
}
