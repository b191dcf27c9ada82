package lndclient

import (
	"context"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/channelguard/channel-guard/internal/observability/metrics"
	"github.com/channelguard/channel-guard/internal/types"
)

type nodeClientWithMetrics struct {
	node NodeInterface
}

func NewNodeClientWithMetrics(node NodeInterface) NodeInterface {
	return &nodeClientWithMetrics{node: node}
}

func (n *nodeClientWithMetrics) ListChannel(ctx context.Context, chanID lnwire.ShortChannelID) (*types.ChannelBalance, error) {
	return runNodeMethodWithMetrics("ListChannel", func() (*types.ChannelBalance, error) {
		return n.node.ListChannel(ctx, chanID)
	})
}

func (n *nodeClientWithMetrics) GetPolicy(ctx context.Context, chanID lnwire.ShortChannelID) (*types.FeePolicy, error) {
	return runNodeMethodWithMetrics("GetPolicy", func() (*types.FeePolicy, error) {
		return n.node.GetPolicy(ctx, chanID)
	})
}

func (n *nodeClientWithMetrics) UpdatePolicy(
	ctx context.Context, chanID lnwire.ShortChannelID, current *types.FeePolicy, update types.PolicyUpdate,
) error {
	_, err := runNodeMethodWithMetrics("UpdatePolicy", func() (struct{}, error) {
		return struct{}{}, n.node.UpdatePolicy(ctx, chanID, current, update)
	})
	return err
}

func runNodeMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordLNDClientLatency(duration, method, err != nil)
	return v, err
}
