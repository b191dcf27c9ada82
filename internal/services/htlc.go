package services

import (
	"math"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/channelguard/channel-guard/internal/config"
)

// ratioEpsilon absorbs float noise when comparing ratio deltas against the
// change threshold, so a delta of exactly one threshold step still counts.
const ratioEpsilon = 1e-9

// HTLCController derives the max_htlc ceiling that keeps a fraction of the
// capacity out of reach of any single outbound HTLC.
type HTLCController struct {
	floor     float64
	threshold float64
}

func NewHTLCController(cfg *config.GuardConfig) *HTLCController {
	return &HTLCController{
		floor:     cfg.LiquidityFloor,
		threshold: cfg.HTLCChangeThreshold,
	}
}

// DesiredMaxHTLC never returns less than 1 sat.
func (c *HTLCController) DesiredMaxHTLC(localBalance, capacity btcutil.Amount) btcutil.Amount {
	floorAmount := btcutil.Amount(float64(capacity) * c.floor)
	return max(1, localBalance-floorAmount)
}

// ShouldEmit gates ceiling updates on the ratio having moved by at least
// the change threshold since the last applied update.
func (c *HTLCController) ShouldEmit(ratio, lastRatio float64) bool {
	return math.Abs(ratio-lastRatio) >= c.threshold-ratioEpsilon
}
