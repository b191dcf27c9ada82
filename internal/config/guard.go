package config

import (
	"github.com/channelguard/channel-guard/internal/types"
)

const (
	defaultLowerThreshold      = 0.30
	defaultUpperThreshold      = 0.40
	defaultLiquidityFloor      = 0.35
	defaultBlockerPPM          = 17000
	defaultHTLCChangeThreshold = 0.01
)

// GuardConfig holds the control parameters of the fee and HTLC controllers.
type GuardConfig struct {
	// LowerThreshold is the ratio below which the blocker fee activates.
	LowerThreshold float64 `mapstructure:"lower-threshold"`
	// UpperThreshold is the ratio above which the blocker fee is removed.
	UpperThreshold float64 `mapstructure:"upper-threshold"`
	// LiquidityFloor is the fraction of capacity kept out of reach by max_htlc.
	LiquidityFloor      float64 `mapstructure:"liquidity-floor"`
	BlockerPPM          int64   `mapstructure:"blocker-ppm"`
	HTLCChangeThreshold float64 `mapstructure:"htlc-change-threshold"`
}

func DefaultGuardConfig() *GuardConfig {
	return &GuardConfig{
		LowerThreshold:      defaultLowerThreshold,
		UpperThreshold:      defaultUpperThreshold,
		LiquidityFloor:      defaultLiquidityFloor,
		BlockerPPM:          defaultBlockerPPM,
		HTLCChangeThreshold: defaultHTLCChangeThreshold,
	}
}

func (cfg *GuardConfig) Validate() error {
	if cfg.LowerThreshold < 0 || cfg.LowerThreshold >= 1 {
		return types.NewConfigError("lower-threshold must be between 0 and 1")
	}
	if cfg.UpperThreshold < 0 || cfg.UpperThreshold >= 1 {
		return types.NewConfigError("upper-threshold must be between 0 and 1")
	}
	if cfg.LowerThreshold >= cfg.UpperThreshold {
		return types.NewConfigError("lower-threshold must be less than upper-threshold")
	}
	if cfg.LiquidityFloor < 0 || cfg.LiquidityFloor >= 1 {
		return types.NewConfigError("liquidity-floor must be between 0 and 1")
	}
	if cfg.HTLCChangeThreshold <= 0 {
		return types.NewConfigError("htlc-change-threshold must be positive")
	}
	if cfg.BlockerPPM <= 0 {
		return types.NewConfigError("blocker-ppm must be positive")
	}

	return nil
}
