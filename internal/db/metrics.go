package db

import (
	"context"
	"time"

	"github.com/channelguard/channel-guard/internal/observability/metrics"
	"github.com/channelguard/channel-guard/internal/types"
)

type StoreWithMetrics struct {
	store StateStore
}

func NewStoreWithMetrics(store StateStore) *StoreWithMetrics {
	return &StoreWithMetrics{store: store}
}

func (s *StoreWithMetrics) Load(ctx context.Context) (result map[string]types.ChannelState, err error) {
	//nolint:errcheck
	s.run("Load", func() error {
		result, err = s.store.Load(ctx)
		return err
	})

	return
}

func (s *StoreWithMetrics) Save(ctx context.Context, channelID string, state types.ChannelState) error {
	return s.run("Save", func() error {
		return s.store.Save(ctx, channelID, state)
	})
}

func (s *StoreWithMetrics) Delete(ctx context.Context, channelID string) error {
	return s.run("Delete", func() error {
		return s.store.Delete(ctx, channelID)
	})
}

func (s *StoreWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	failure := err != nil && !IsNotFoundError(err)
	metrics.RecordStoreLatency(duration, method, failure)
	return err
}
