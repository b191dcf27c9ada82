package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const envPrefix = "CHANNEL_GUARD"

type Config struct {
	Guard    GuardConfig    `mapstructure:"guard"`
	Poller   PollerConfig   `mapstructure:"poller"`
	LND      LNDConfig      `mapstructure:"lnd"`
	State    StateConfig    `mapstructure:"state"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Log      LogConfig      `mapstructure:"log"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Guard.Validate(); err != nil {
		return err
	}

	if err := cfg.Poller.Validate(); err != nil {
		return err
	}

	if err := cfg.LND.Validate(); err != nil {
		return err
	}

	if err := cfg.State.Validate(); err != nil {
		return err
	}

	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}

	if err := cfg.Notifier.Validate(); err != nil {
		return err
	}

	if err := cfg.Log.Validate(); err != nil {
		return err
	}

	return nil
}

// New loads the config from cfgFile with defaults and environment overrides.
func New(cfgFile string) (*Config, error) {
	return Load(viper.New(), cfgFile)
}

// Load reads the configuration into v, which may already carry bound
// command line flags. A missing config file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
			}
		} else if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", cfgFile).Msg("config file not found, using defaults")
		} else {
			return nil, fmt.Errorf("failed to stat config file %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.LND.TLSCertPath = CleanAndExpandPath(cfg.LND.TLSCertPath)
	cfg.LND.MacaroonPath = CleanAndExpandPath(cfg.LND.MacaroonPath)
	cfg.State.Path = CleanAndExpandPath(cfg.State.Path)
	cfg.Log.File = CleanAndExpandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	guard := DefaultGuardConfig()
	v.SetDefault("guard.lower-threshold", guard.LowerThreshold)
	v.SetDefault("guard.upper-threshold", guard.UpperThreshold)
	v.SetDefault("guard.liquidity-floor", guard.LiquidityFloor)
	v.SetDefault("guard.blocker-ppm", guard.BlockerPPM)
	v.SetDefault("guard.htlc-change-threshold", guard.HTLCChangeThreshold)

	poller := DefaultPollerConfig()
	v.SetDefault("poller.interval", poller.Interval)
	v.SetDefault("poller.status-interval", poller.StatusInterval)
	v.SetDefault("poller.backoff-base", poller.BackoffBase)
	v.SetDefault("poller.backoff-max", poller.BackoffMax)

	lnd := DefaultLNDConfig()
	v.SetDefault("lnd.rpc-host", lnd.RPCHost)
	v.SetDefault("lnd.tls-cert-path", lnd.TLSCertPath)
	v.SetDefault("lnd.macaroon-path", lnd.MacaroonPath)
	v.SetDefault("lnd.timeout", lnd.Timeout)
	v.SetDefault("lnd.max-retry-times", lnd.MaxRetryTimes)
	v.SetDefault("lnd.retry-interval", lnd.RetryInterval)

	state := DefaultStateConfig()
	v.SetDefault("state.backend", state.Backend)
	v.SetDefault("state.path", state.Path)
	v.SetDefault("state.db.address", "")
	v.SetDefault("state.db.username", "")
	v.SetDefault("state.db.password", "")
	v.SetDefault("state.db.db-name", defaultDbName)

	metrics := DefaultMetricsConfig()
	v.SetDefault("metrics.enabled", metrics.Enabled)
	v.SetDefault("metrics.host", metrics.Host)
	v.SetDefault("metrics.port", metrics.Port)

	notifier := DefaultNotifierConfig()
	v.SetDefault("notifier.url", notifier.URL)
	v.SetDefault("notifier.exchange", notifier.Exchange)
	v.SetDefault("notifier.routing-key", notifier.RoutingKey)

	logCfg := DefaultLogConfig()
	v.SetDefault("log.level", logCfg.Level)
	v.SetDefault("log.file", logCfg.File)
	v.SetDefault("log.max-size-mb", logCfg.MaxSizeMB)
	v.SetDefault("log.max-backups", logCfg.MaxBackups)
	v.SetDefault("log.max-age-days", logCfg.MaxAgeDays)
}
