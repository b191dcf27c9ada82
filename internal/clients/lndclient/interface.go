package lndclient

import (
	"context"

	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/channelguard/channel-guard/internal/types"
)

// NodeInterface is the query/command surface of the node that the guard
// depends on. Implementations classify failures as types.ConnectivityError
// or types.PolicyApplyError.
//
//go:generate mockery --name=NodeInterface --output=../../../tests/mocks --outpkg=mocks --filename=mock_node_client.go
type NodeInterface interface {
	ListChannel(ctx context.Context, chanID lnwire.ShortChannelID) (*types.ChannelBalance, error)
	GetPolicy(ctx context.Context, chanID lnwire.ShortChannelID) (*types.FeePolicy, error)
	// UpdatePolicy changes the fields set in update. Fields of current that
	// are not part of update are sent back unchanged.
	UpdatePolicy(ctx context.Context, chanID lnwire.ShortChannelID, current *types.FeePolicy, update types.PolicyUpdate) error
}
