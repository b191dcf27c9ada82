package config

import (
	"time"

	"github.com/channelguard/channel-guard/internal/types"
)

const (
	defaultLNDRPCHost       = "localhost:10009"
	defaultLNDTLSCertPath   = "~/.lnd/tls.cert"
	defaultLNDMacaroonPath  = "~/.lnd/data/chain/bitcoin/mainnet/admin.macaroon"
	defaultLNDTimeout       = 10 * time.Second
	defaultLNDMaxRetryTimes = 3
	defaultLNDRetryInterval = 500 * time.Millisecond
)

// LNDConfig defines how to reach the lnd gRPC interface.
type LNDConfig struct {
	RPCHost      string `mapstructure:"rpc-host"`
	TLSCertPath  string `mapstructure:"tls-cert-path"`
	MacaroonPath string `mapstructure:"macaroon-path"`
	// Timeout bounds every single RPC.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxRetryTimes and RetryInterval only apply to the startup identity lookup.
	MaxRetryTimes uint          `mapstructure:"max-retry-times"`
	RetryInterval time.Duration `mapstructure:"retry-interval"`
}

func DefaultLNDConfig() *LNDConfig {
	return &LNDConfig{
		RPCHost:       defaultLNDRPCHost,
		TLSCertPath:   defaultLNDTLSCertPath,
		MacaroonPath:  defaultLNDMacaroonPath,
		Timeout:       defaultLNDTimeout,
		MaxRetryTimes: defaultLNDMaxRetryTimes,
		RetryInterval: defaultLNDRetryInterval,
	}
}

func (cfg *LNDConfig) Validate() error {
	if cfg.RPCHost == "" {
		return types.NewConfigError("lnd rpc-host cannot be empty")
	}
	if cfg.TLSCertPath == "" {
		return types.NewConfigError("lnd tls-cert-path cannot be empty")
	}
	if cfg.MacaroonPath == "" {
		return types.NewConfigError("lnd macaroon-path cannot be empty")
	}
	if cfg.Timeout <= 0 {
		return types.NewConfigError("lnd timeout should be positive")
	}
	if cfg.MaxRetryTimes <= 0 {
		return types.NewConfigError("lnd max-retry-times should be positive")
	}
	if cfg.RetryInterval <= 0 {
		return types.NewConfigError("lnd retry-interval should be positive")
	}

	return nil
}
