package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("failed to sample channel: %w", NewConnectivityError("list channels", cause))

	assert.True(t, IsConnectivityError(err))
	assert.False(t, IsConfigError(err))
	assert.False(t, IsPolicyApplyError(err))
	assert.ErrorIs(t, err, cause)

	typ, ok := TypeOf(err)
	assert.True(t, ok)
	assert.Equal(t, ConnectivityError, typ)

	_, ok = TypeOf(cause)
	assert.False(t, ok)

	assert.Equal(t, "CONFIG_ERROR: lower threshold must be below upper threshold",
		NewConfigError("lower threshold must be below upper threshold").Error())
}

func TestChannelSnapshot(t *testing.T) {
	snapshot := &ChannelSnapshot{
		LocalBalance: 5_000_000,
		Capacity:     10_000_000,
		Policy:       FeePolicy{FeeRatePPM: 1000},
	}
	assert.InDelta(t, 0.5, snapshot.Ratio(), 1e-12)
	assert.Equal(t, snapshot.Capacity, snapshot.CurrentMaxHTLC())

	snapshot.Policy.MaxHTLCMsat = 1_500_000_000
	assert.EqualValues(t, 1_500_000, snapshot.CurrentMaxHTLC())

	state := NewChannelState(snapshot)
	assert.False(t, state.BlockerActive)
	assert.Equal(t, FeeStateNormal, state.FeeState())
	assert.Equal(t, FeePPM(1000), state.OriginalFeePPM)
	assert.InDelta(t, 0.5, state.LastHTLCRatio, 1e-12)
}
