package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/channelguard/channel-guard/internal/types"
)

// FakeNode is an in-memory node holding a single channel. Policy updates
// are applied to its state so repeated ticks observe their own effects.
type FakeNode struct {
	mu      sync.Mutex
	balance types.ChannelBalance
	policy  types.FeePolicy
	updates []types.PolicyUpdate

	listErr   error
	policyErr error
	updateErr error
}

func NewFakeNode(local, capacity btcutil.Amount, policy types.FeePolicy) *FakeNode {
	return &FakeNode{
		balance: types.ChannelBalance{
			ChannelPoint: "6f4a2b7e1c9d0e3f5a8b2c4d6e8f0a1b3c5d7e9f1a2b4c6d8e0f2a4b6c8d0e2f:1",
			LocalBalance: local,
			Capacity:     capacity,
		},
		policy: policy,
	}
}

// DefaultPolicy is a typical policy with no max_htlc limit set.
func DefaultPolicy(feeRatePPM int64) types.FeePolicy {
	return types.FeePolicy{
		BaseFeeMsat:   1000,
		FeeRatePPM:    feeRatePPM,
		TimeLockDelta: 80,
		MinHTLCMsat:   1000,
	}
}

func (n *FakeNode) ListChannel(_ context.Context, _ lnwire.ShortChannelID) (*types.ChannelBalance, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.listErr != nil {
		return nil, n.listErr
	}
	balance := n.balance
	return &balance, nil
}

func (n *FakeNode) GetPolicy(_ context.Context, _ lnwire.ShortChannelID) (*types.FeePolicy, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.policyErr != nil {
		return nil, n.policyErr
	}
	policy := n.policy
	return &policy, nil
}

func (n *FakeNode) UpdatePolicy(
	_ context.Context, _ lnwire.ShortChannelID, _ *types.FeePolicy, update types.PolicyUpdate,
) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.updateErr != nil {
		return n.updateErr
	}
	if update.MaxHTLCMsat != nil && int64(*update.MaxHTLCMsat) < n.policy.MinHTLCMsat {
		return types.NewPolicyApplyError(
			"update rejected by node", fmt.Errorf("max_htlc %d below min_htlc %d", *update.MaxHTLCMsat, n.policy.MinHTLCMsat),
		)
	}
	if update.FeeRatePPM != nil {
		n.policy.FeeRatePPM = *update.FeeRatePPM
	}
	if update.MaxHTLCMsat != nil {
		n.policy.MaxHTLCMsat = *update.MaxHTLCMsat
	}
	n.updates = append(n.updates, update)

	return nil
}

// SetLocalBalance simulates payments moving liquidity in or out.
func (n *FakeNode) SetLocalBalance(local btcutil.Amount) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.balance.LocalBalance = local
}

// SetFeeRate simulates a manual fee change by the operator.
func (n *FakeNode) SetFeeRate(feeRatePPM int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.policy.FeeRatePPM = feeRatePPM
}

func (n *FakeNode) SetListError(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listErr = err
}

func (n *FakeNode) SetUpdateError(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updateErr = err
}

func (n *FakeNode) Policy() types.FeePolicy {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.policy
}

func (n *FakeNode) Updates() []types.PolicyUpdate {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]types.PolicyUpdate(nil), n.updates...)
}

// MemoryStore is a StateStore kept in memory.
type MemoryStore struct {
	mu      sync.Mutex
	states  map[string]types.ChannelState
	saves   int
	saveErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]types.ChannelState)}
}

func (s *MemoryStore) Load(context.Context) (map[string]types.ChannelState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make(map[string]types.ChannelState, len(s.states))
	for k, v := range s.states {
		states[k] = v
	}
	return states, nil
}

func (s *MemoryStore) Save(_ context.Context, channelID string, state types.ChannelState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	s.states[channelID] = state
	s.saves++
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, channelID)
	return nil
}

func (s *MemoryStore) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

func (s *MemoryStore) Get(channelID string) (types.ChannelState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[channelID]
	return state, ok
}

func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
