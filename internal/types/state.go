package types

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lnwire"
)

// FeeState is the state of the fee protection machine.
type FeeState string

const (
	FeeStateNormal    FeeState = "NORMAL"
	FeeStateProtected FeeState = "PROTECTED"
)

func (s FeeState) String() string {
	return string(s)
}

// ChannelState is the persisted per-channel record. OriginalFeePPM is nil
// when no fee to come back to is known, e.g. a hand-edited entry.
type ChannelState struct {
	BlockerActive  bool    `json:"blocker_active"`
	OriginalFeePPM *int64  `json:"original_fee_ppm"`
	LastHTLCRatio  float64 `json:"last_htlc_ratio"`
}

// FeePPM returns a pointer to v, for use as ChannelState.OriginalFeePPM.
func FeePPM(v int64) *int64 {
	return &v
}

// OriginalFee returns the stored fee rate and whether one is stored at all.
func (s ChannelState) OriginalFee() (int64, bool) {
	if s.OriginalFeePPM == nil {
		return 0, false
	}
	return *s.OriginalFeePPM, true
}

// Equal compares by value, including the stored original fee.
func (s ChannelState) Equal(other ChannelState) bool {
	fee, known := s.OriginalFee()
	otherFee, otherKnown := other.OriginalFee()
	return s.BlockerActive == other.BlockerActive &&
		known == otherKnown && fee == otherFee &&
		s.LastHTLCRatio == other.LastHTLCRatio
}

func (s ChannelState) FeeState() FeeState {
	if s.BlockerActive {
		return FeeStateProtected
	}
	return FeeStateNormal
}

// NewChannelState seeds a fresh baseline from the first observation of a channel.
func NewChannelState(snapshot *ChannelSnapshot) ChannelState {
	return ChannelState{
		BlockerActive:  false,
		OriginalFeePPM: FeePPM(snapshot.Policy.FeeRatePPM),
		LastHTLCRatio:  snapshot.Ratio(),
	}
}

// FeePolicy mirrors our side of the channel edge as announced by the node.
type FeePolicy struct {
	BaseFeeMsat   int64
	FeeRatePPM    int64
	TimeLockDelta uint32
	MinHTLCMsat   int64
	MaxHTLCMsat   lnwire.MilliSatoshi
}

// ChannelBalance is the liquidity part of a channel listing.
type ChannelBalance struct {
	ChannelPoint string
	LocalBalance btcutil.Amount
	Capacity     btcutil.Amount
}

// ChannelSnapshot is a single liquidity sample.
type ChannelSnapshot struct {
	ChannelID    lnwire.ShortChannelID
	ChannelPoint string
	LocalBalance btcutil.Amount
	Capacity     btcutil.Amount
	Policy       FeePolicy
}

// Ratio is the outbound liquidity ratio. Capacity is validated to be
// positive by the sampler.
func (s *ChannelSnapshot) Ratio() float64 {
	if s.Capacity <= 0 {
		return 0
	}
	return float64(s.LocalBalance) / float64(s.Capacity)
}

// CurrentMaxHTLC returns the live HTLC ceiling in satoshis. A zero
// max_htlc_msat means no limit, which is reported as the full capacity.
func (s *ChannelSnapshot) CurrentMaxHTLC() btcutil.Amount {
	if s.Policy.MaxHTLCMsat == 0 {
		return s.Capacity
	}
	return s.Policy.MaxHTLCMsat.ToSatoshis()
}

// PolicyUpdate carries only the fields that must change. Nil fields are
// left as they are on the node.
type PolicyUpdate struct {
	FeeRatePPM  *int64
	MaxHTLCMsat *lnwire.MilliSatoshi
}

func (u PolicyUpdate) IsEmpty() bool {
	return u.FeeRatePPM == nil && u.MaxHTLCMsat == nil
}
