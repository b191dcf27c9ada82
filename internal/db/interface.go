package db

import (
	"context"

	"github.com/channelguard/channel-guard/internal/types"
)

// StateStore persists ChannelState per channel identifier. Several guard
// processes may share one store, each writing only its own key, so Save and
// Delete must never drop entries owned by other writers.
type StateStore interface {
	// Load returns the full mapping. A missing or unparsable store yields an
	// empty mapping.
	Load(ctx context.Context) (map[string]types.ChannelState, error)
	// Save overlays a single channel entry onto the current store content.
	Save(ctx context.Context, channelID string, state types.ChannelState) error
	// Delete removes a channel entry, returning NotFoundError if absent.
	Delete(ctx context.Context, channelID string) error
}
