package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelguard/channel-guard/internal/types"
)

func TestPoller_Backoff(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	tickSignal := make(chan time.Duration)
	testClock := clock.NewTestClockWithTickSignal(start, tickSignal)

	const failures = 7
	var calls atomic.Int32
	pollMethod := func(ctx context.Context) error {
		if calls.Add(1) <= failures {
			return types.NewConnectivityError("node offline", errors.New("connection refused"))
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPoller(2*time.Second, pollMethod,
		WithClock(testClock),
		WithBackoff(time.Second, time.Minute),
	)
	done := make(chan error, 1)
	go func() {
		done <- p.Start(ctx)
	}()

	expected := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
		time.Minute,
		time.Minute,
	}
	now := start
	for _, want := range expected {
		got := <-tickSignal
		assert.Equal(t, want, got)
		now = now.Add(got)
		testClock.SetTime(now)
	}

	// after a successful poll the regular interval resumes
	assert.Equal(t, 2*time.Second, <-tickSignal)
	assert.Equal(t, int32(failures+1), calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestPoller_ConfigErrorIsFatal(t *testing.T) {
	var calls atomic.Int32
	pollMethod := func(ctx context.Context) error {
		calls.Add(1)
		return types.NewConfigError("channel %s has zero capacity", "1x1x1")
	}

	p := NewPoller(time.Millisecond, pollMethod)
	err := p.Start(context.Background())
	require.Error(t, err)
	assert.True(t, types.IsConfigError(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestPoller_OtherErrorsDoNotStopLoop(t *testing.T) {
	var calls atomic.Int32
	pollMethod := func(ctx context.Context) error {
		calls.Add(1)
		return types.NewPolicyApplyError("update rejected", errors.New("invalid fee"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(time.Millisecond, pollMethod)
	done := make(chan error, 1)
	go func() {
		done <- p.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestPoller_Stop(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller(time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	done := make(chan error, 1)
	go func() {
		done <- p.Start(context.Background())
	}()

	require.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, time.Second, time.Millisecond)

	p.Stop()
	require.NoError(t, <-done)
}

func TestPoller_CancelDuringBackoff(t *testing.T) {
	tickSignal := make(chan time.Duration)
	testClock := clock.NewTestClockWithTickSignal(time.Now(), tickSignal)

	p := NewPoller(time.Second, func(ctx context.Context) error {
		return types.NewConnectivityError("node offline", errors.New("timeout"))
	}, WithClock(testClock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Start(ctx)
	}()

	<-tickSignal
	cancel()
	require.NoError(t, <-done)
}
