package services

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelguard/channel-guard/internal/config"
	"github.com/channelguard/channel-guard/testutil"
)

func TestHTLCController_DesiredMaxHTLC(t *testing.T) {
	controller := NewHTLCController(config.DefaultGuardConfig())

	tests := []struct {
		name     string
		local    btcutil.Amount
		capacity btcutil.Amount
		want     btcutil.Amount
	}{
		{"half full channel", 5_000_000, 10_000_000, 1_500_000},
		{"full channel", 10_000_000, 10_000_000, 6_500_000},
		{"exactly at floor", 3_500_000, 10_000_000, 1},
		{"below floor", 2_800_000, 10_000_000, 1},
		{"empty channel", 0, 10_000_000, 1},
		{"just above floor", 3_500_001, 10_000_000, 1},
		{"two sats above floor", 3_500_002, 10_000_000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, controller.DesiredMaxHTLC(tt.local, tt.capacity))
		})
	}
}

func TestHTLCController_Bound(t *testing.T) {
	f := gofakeit.New(1)

	for range 1000 {
		cfg := config.DefaultGuardConfig()
		cfg.LiquidityFloor = f.Float64Range(0, 0.999)
		controller := NewHTLCController(cfg)

		capacity := testutil.RandomCapacity(f)
		local := btcutil.Amount(f.IntRange(1, int(capacity)))

		got := controller.DesiredMaxHTLC(local, capacity)
		require.GreaterOrEqual(t, got, btcutil.Amount(1))
		require.LessOrEqual(t, got, local)
	}
}

func TestHTLCController_ShouldEmit(t *testing.T) {
	controller := NewHTLCController(config.DefaultGuardConfig())

	tests := []struct {
		name  string
		ratio float64
		last  float64
		want  bool
	}{
		{"small increase", 0.403, 0.40, false},
		{"small decrease", 0.397, 0.40, false},
		{"no change", 0.5, 0.5, false},
		{"exactly one threshold", 0.41, 0.40, true},
		{"exactly one threshold down", 0.39, 0.40, true},
		{"large move", 0.1, 0.9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, controller.ShouldEmit(tt.ratio, tt.last))
		})
	}
}
