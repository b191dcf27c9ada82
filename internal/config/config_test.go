package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelguard/channel-guard/internal/types"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.InDelta(t, 0.30, cfg.Guard.LowerThreshold, 1e-12)
	assert.InDelta(t, 0.40, cfg.Guard.UpperThreshold, 1e-12)
	assert.InDelta(t, 0.35, cfg.Guard.LiquidityFloor, 1e-12)
	assert.EqualValues(t, 17000, cfg.Guard.BlockerPPM)
	assert.InDelta(t, 0.01, cfg.Guard.HTLCChangeThreshold, 1e-12)
	assert.Equal(t, 2*time.Second, cfg.Poller.Interval)
	assert.Equal(t, 60*time.Second, cfg.Poller.StatusInterval)
	assert.Equal(t, StateBackendFile, cfg.State.Backend)
	assert.True(t, filepath.IsAbs(cfg.State.Path))
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Notifier.Enabled())
}

func TestNew_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yml")
	content := `
guard:
  lower-threshold: 0.2
  upper-threshold: 0.5
  blocker-ppm: 25000
poller:
  interval: 5s
state:
  path: ` + filepath.Join(dir, "state.json") + `
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o600))
	t.Setenv("CHANNEL_GUARD_GUARD_LIQUIDITY_FLOOR", "0.25")
	t.Setenv("CHANNEL_GUARD_POLLER_STATUS_INTERVAL", "30s")

	cfg, err := New(cfgFile)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, cfg.Guard.LowerThreshold, 1e-12)
	assert.InDelta(t, 0.5, cfg.Guard.UpperThreshold, 1e-12)
	assert.InDelta(t, 0.25, cfg.Guard.LiquidityFloor, 1e-12)
	assert.EqualValues(t, 25000, cfg.Guard.BlockerPPM)
	assert.Equal(t, 5*time.Second, cfg.Poller.Interval)
	assert.Equal(t, 30*time.Second, cfg.Poller.StatusInterval)
	assert.Equal(t, filepath.Join(dir, "state.json"), cfg.State.Path)
}

func TestLoad_BoundOverride(t *testing.T) {
	v := viper.New()
	v.Set("guard.lower-threshold", 0.45)

	_, err := Load(v, "")
	require.Error(t, err)
	assert.True(t, types.IsConfigError(err))
	assert.Contains(t, err.Error(), "lower-threshold must be less than upper-threshold")
}

func TestGuardConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *GuardConfig)
		errMsg string
	}{
		{"defaults", func(cfg *GuardConfig) {}, ""},
		{"lower equals upper", func(cfg *GuardConfig) { cfg.LowerThreshold = cfg.UpperThreshold }, "lower-threshold must be less than upper-threshold"},
		{"lower above upper", func(cfg *GuardConfig) { cfg.LowerThreshold = 0.5 }, "lower-threshold must be less than upper-threshold"},
		{"negative lower", func(cfg *GuardConfig) { cfg.LowerThreshold = -0.1 }, "lower-threshold must be between 0 and 1"},
		{"upper at one", func(cfg *GuardConfig) { cfg.UpperThreshold = 1 }, "upper-threshold must be between 0 and 1"},
		{"floor at one", func(cfg *GuardConfig) { cfg.LiquidityFloor = 1 }, "liquidity-floor must be between 0 and 1"},
		{"zero change threshold", func(cfg *GuardConfig) { cfg.HTLCChangeThreshold = 0 }, "htlc-change-threshold must be positive"},
		{"zero blocker", func(cfg *GuardConfig) { cfg.BlockerPPM = 0 }, "blocker-ppm must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGuardConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, types.IsConfigError(err))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestStateConfig_Validate(t *testing.T) {
	t.Run("file backend", func(t *testing.T) {
		cfg := DefaultStateConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("mongo backend requires address", func(t *testing.T) {
		cfg := DefaultStateConfig()
		cfg.Backend = StateBackendMongo
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database address is required")

		cfg.Db.Address = "mongodb://localhost:27017"
		require.NoError(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := DefaultStateConfig()
		cfg.Backend = "redis"
		require.Error(t, cfg.Validate())
	})
}
