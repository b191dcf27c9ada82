package services

import (
	"context"
	"fmt"

	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/channelguard/channel-guard/internal/clients/lndclient"
	"github.com/channelguard/channel-guard/internal/types"
)

// Sampler reads a channel's liquidity and our side of its routing policy.
type Sampler struct {
	node lndclient.NodeInterface
}

func NewSampler(node lndclient.NodeInterface) *Sampler {
	return &Sampler{node: node}
}

func (s *Sampler) Sample(ctx context.Context, chanID lnwire.ShortChannelID) (*types.ChannelSnapshot, error) {
	balance, err := s.node.ListChannel(ctx, chanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel %s: %w", chanID, err)
	}

	if balance.Capacity <= 0 {
		return nil, types.NewConfigError("channel %s has zero capacity", chanID)
	}

	policy, err := s.node.GetPolicy(ctx, chanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get policy of channel %s: %w", chanID, err)
	}

	return &types.ChannelSnapshot{
		ChannelID:    chanID,
		ChannelPoint: balance.ChannelPoint,
		LocalBalance: balance.LocalBalance,
		Capacity:     balance.Capacity,
		Policy:       *policy,
	}, nil
}
