package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelguard/channel-guard/internal/types"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), ".state", "channel_state.json"))
}

func TestFileStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		store := newTestFileStore(t)

		states, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, states)
	})
	t.Run("malformed file", func(t *testing.T) {
		store := newTestFileStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
		require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

		states, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, states)
	})
	t.Run("null document", func(t *testing.T) {
		store := newTestFileStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
		require.NoError(t, os.WriteFile(store.Path(), []byte("null"), 0o644))

		states, err := store.Load(ctx)
		require.NoError(t, err)
		assert.NotNil(t, states)
		assert.Empty(t, states)
	})
	t.Run("hand edited file", func(t *testing.T) {
		store := newTestFileStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
		raw := `{"992028868678647809": {"blocker_active": true, "original_fee_ppm": 250, "last_htlc_ratio": 0.4}}`
		require.NoError(t, os.WriteFile(store.Path(), []byte(raw), 0o644))

		states, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, types.ChannelState{
			BlockerActive:  true,
			OriginalFeePPM: types.FeePPM(250),
			LastHTLCRatio:  0.4,
		}, states["992028868678647809"])
	})
	t.Run("original fee left empty", func(t *testing.T) {
		store := newTestFileStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
		raw := `{"1": {"blocker_active": true, "original_fee_ppm": null}, "2": {"last_htlc_ratio": 0.7}}`
		require.NoError(t, os.WriteFile(store.Path(), []byte(raw), 0o644))

		states, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, types.ChannelState{BlockerActive: true}, states["1"])
		assert.Equal(t, types.ChannelState{LastHTLCRatio: 0.7}, states["2"])

		_, known := states["1"].OriginalFee()
		assert.False(t, known)
	})
}

func TestFileStore_SaveMerges(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	first := types.ChannelState{OriginalFeePPM: types.FeePPM(100), LastHTLCRatio: 0.5}
	second := types.ChannelState{BlockerActive: true, OriginalFeePPM: types.FeePPM(40), LastHTLCRatio: 0.1}

	require.NoError(t, store.Save(ctx, "1", first))
	// a second process with its own handle on the same file
	other := NewFileStore(store.Path())
	require.NoError(t, other.Save(ctx, "2", second))

	states, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 2)
	assert.Equal(t, first, states["1"])
	assert.Equal(t, second, states["2"])

	first.LastHTLCRatio = 0.75
	require.NoError(t, store.Save(ctx, "1", first))

	states, err = other.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, states["1"])
	assert.Equal(t, second, states["2"])

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp")
	}
}

func TestFileStore_SaveOverMalformedFile(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("[]garbage"), 0o644))

	state := types.ChannelState{OriginalFeePPM: types.FeePPM(10)}
	require.NoError(t, store.Save(ctx, "7", state))

	states, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]types.ChannelState{"7": state}, states)
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	require.NoError(t, store.Save(ctx, "1", types.ChannelState{OriginalFeePPM: types.FeePPM(1)}))
	require.NoError(t, store.Save(ctx, "2", types.ChannelState{OriginalFeePPM: types.FeePPM(2)}))

	require.NoError(t, store.Delete(ctx, "1"))

	states, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, states, "1")
	assert.Contains(t, states, "2")

	err = store.Delete(ctx, "1")
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestFileStore_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	path := newTestFileStore(t).Path()

	const (
		writers = 4
		rounds  = 25
	)

	var wg conc.WaitGroup
	for w := range writers {
		wg.Go(func() {
			store := NewFileStore(path)
			key := fmt.Sprintf("chan-%d", w)
			for r := range rounds {
				err := store.Save(ctx, key, types.ChannelState{
					OriginalFeePPM: types.FeePPM(int64(r)),
					LastHTLCRatio:  float64(w) / 10,
				})
				assert.NoError(t, err)
			}
		})
	}
	wg.Wait()

	states, err := NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, states, writers)
	for w := range writers {
		state := states[fmt.Sprintf("chan-%d", w)]
		assert.Equal(t, types.FeePPM(int64(rounds-1)), state.OriginalFeePPM)
		assert.InDelta(t, float64(w)/10, state.LastHTLCRatio, 1e-12)
	}
}
