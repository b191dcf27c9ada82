package model

import (
	"time"

	"github.com/channelguard/channel-guard/internal/types"
)

const ChannelStateCollection = "channel_states"

type ChannelStateDocument struct {
	ChannelID      string  `bson:"_id"`
	BlockerActive  bool    `bson:"blocker_active"`
	OriginalFeePPM *int64  `bson:"original_fee_ppm"`
	LastHTLCRatio  float64 `bson:"last_htlc_ratio"`
	UpdatedAt      int64   `bson:"updated_at"`
}

func FromChannelState(channelID string, state types.ChannelState, now time.Time) *ChannelStateDocument {
	return &ChannelStateDocument{
		ChannelID:      channelID,
		BlockerActive:  state.BlockerActive,
		OriginalFeePPM: state.OriginalFeePPM,
		LastHTLCRatio:  state.LastHTLCRatio,
		UpdatedAt:      now.Unix(),
	}
}

func (d *ChannelStateDocument) ToChannelState() types.ChannelState {
	return types.ChannelState{
		BlockerActive:  d.BlockerActive,
		OriginalFeePPM: d.OriginalFeePPM,
		LastHTLCRatio:  d.LastHTLCRatio,
	}
}
