package services

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/rs/zerolog/log"

	"github.com/channelguard/channel-guard/internal/clients/lndclient"
	"github.com/channelguard/channel-guard/internal/types"
)

// DesiredPolicy holds the target values of the two knobs the guard controls.
// A nil field is not managed in this round.
type DesiredPolicy struct {
	FeeRatePPM *int64
	MaxHTLC    *btcutil.Amount
}

// PolicyApplier pushes the minimal policy diff to the node.
type PolicyApplier struct {
	node lndclient.NodeInterface
}

func NewPolicyApplier(node lndclient.NodeInterface) *PolicyApplier {
	return &PolicyApplier{node: node}
}

// Apply compares desired against current and sends one update carrying only
// the differing fields. When current is nil the live policy is read from the
// node first. It returns the update that was sent, or nil if nothing differed.
func (a *PolicyApplier) Apply(
	ctx context.Context, chanID lnwire.ShortChannelID, current *types.FeePolicy, desired DesiredPolicy,
) (*types.PolicyUpdate, error) {
	if current == nil {
		live, err := a.node.GetPolicy(ctx, chanID)
		if err != nil {
			return nil, fmt.Errorf("failed to read live policy: %w", err)
		}
		current = live
	}

	update := diffPolicy(current, desired)
	if update.IsEmpty() {
		log.Ctx(ctx).Debug().Msg("policy already up to date")
		return nil, nil
	}

	if err := a.node.UpdatePolicy(ctx, chanID, current, update); err != nil {
		return nil, fmt.Errorf("failed to update policy: %w", err)
	}

	return &update, nil
}

func diffPolicy(current *types.FeePolicy, desired DesiredPolicy) types.PolicyUpdate {
	var update types.PolicyUpdate

	if desired.FeeRatePPM != nil && *desired.FeeRatePPM != current.FeeRatePPM {
		fee := *desired.FeeRatePPM
		update.FeeRatePPM = &fee
	}

	if desired.MaxHTLC != nil {
		// the node refuses a max_htlc below the channel's min_htlc
		maxHTLC := max(lnwire.NewMSatFromSatoshis(*desired.MaxHTLC), lnwire.MilliSatoshi(current.MinHTLCMsat))
		if maxHTLC != current.MaxHTLCMsat {
			update.MaxHTLCMsat = &maxHTLC
		}
	}

	return update
}
