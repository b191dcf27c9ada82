package services

import (
	"github.com/channelguard/channel-guard/internal/config"
	"github.com/channelguard/channel-guard/internal/types"
)

// FeeDecision is the outcome of one evaluation of the fee protection machine.
type FeeDecision struct {
	// State is the channel state after the evaluation. LastHTLCRatio is
	// carried over untouched.
	State types.ChannelState
	// DesiredFeePPM is the fee rate the node should advertise.
	DesiredFeePPM int64
	// Event is empty when nothing noteworthy happened.
	Event types.EventType
}

// Transitioned reports whether the protection flag flipped.
func (d FeeDecision) Transitioned() bool {
	switch d.Event {
	case types.EventBlockerActivated, types.EventBlockerDeactivated, types.EventOriginalFeeMissing:
		return true
	default:
		return false
	}
}

// FeeController is the two-state hysteresis machine that switches the
// blocker fee on below the lower threshold and off above the upper one.
type FeeController struct {
	lower      float64
	upper      float64
	blockerPPM int64
}

func NewFeeController(cfg *config.GuardConfig) *FeeController {
	return &FeeController{
		lower:      cfg.LowerThreshold,
		upper:      cfg.UpperThreshold,
		blockerPPM: cfg.BlockerPPM,
	}
}

func (c *FeeController) BlockerPPM() int64 {
	return c.blockerPPM
}

// Evaluate runs one transition step against the latest ratio and the fee
// rate currently live on the node.
func (c *FeeController) Evaluate(state types.ChannelState, ratio float64, liveFeePPM int64) FeeDecision {
	next := state
	original, known := state.OriginalFee()

	switch state.FeeState() {
	case types.FeeStateNormal:
		if ratio < c.lower {
			// A live blocker fee while NORMAL is a leftover of an interrupted
			// exit, the stored original is still the one to come back to.
			if liveFeePPM != c.blockerPPM {
				next.OriginalFeePPM = types.FeePPM(liveFeePPM)
			}
			next.BlockerActive = true
			return FeeDecision{State: next, DesiredFeePPM: c.blockerPPM, Event: types.EventBlockerActivated}
		}

		switch {
		case known && liveFeePPM == original:
			return FeeDecision{State: next, DesiredFeePPM: original}
		case liveFeePPM == c.blockerPPM && known:
			return FeeDecision{State: next, DesiredFeePPM: original, Event: types.EventFeeRestored}
		case liveFeePPM == c.blockerPPM:
			// nothing to restore, the missing original was reported on exit
			return FeeDecision{State: next, DesiredFeePPM: liveFeePPM}
		default:
			// the operator changed the fee, follow it
			next.OriginalFeePPM = types.FeePPM(liveFeePPM)
			return FeeDecision{State: next, DesiredFeePPM: liveFeePPM, Event: types.EventFeeAdopted}
		}

	default:
		if ratio > c.upper {
			next.BlockerActive = false
			if !known {
				return FeeDecision{State: next, DesiredFeePPM: liveFeePPM, Event: types.EventOriginalFeeMissing}
			}
			return FeeDecision{State: next, DesiredFeePPM: original, Event: types.EventBlockerDeactivated}
		}

		if liveFeePPM != c.blockerPPM {
			return FeeDecision{State: next, DesiredFeePPM: c.blockerPPM, Event: types.EventBlockerReasserted}
		}
		return FeeDecision{State: next, DesiredFeePPM: c.blockerPPM}
	}
}
