package types

import "time"

type EventType string

const (
	EventBlockerActivated   EventType = "BLOCKER_ACTIVATED"
	EventBlockerDeactivated EventType = "BLOCKER_DEACTIVATED"
	EventBlockerReasserted  EventType = "BLOCKER_REASSERTED"
	EventFeeAdopted         EventType = "FEE_ADOPTED"
	EventFeeRestored        EventType = "FEE_RESTORED"
	EventHTLCUpdated        EventType = "HTLC_UPDATED"
	// EventOriginalFeeMissing is raised when protection ends without a
	// stored fee to restore. The live fee is kept.
	EventOriginalFeeMissing EventType = "ORIGINAL_FEE_MISSING"
)

func (t EventType) String() string {
	return string(t)
}

// Event is a change-triggered notification emitted by the guard.
type Event struct {
	Type          EventType `json:"type"`
	ChannelID     string    `json:"channel_id"`
	Ratio         float64   `json:"ratio"`
	FeeRatePPM    int64     `json:"fee_rate_ppm"`
	PreviousFee   int64     `json:"previous_fee_ppm"`
	MaxHTLCSat    int64     `json:"max_htlc_sat"`
	BlockerActive bool      `json:"blocker_active"`
	Timestamp     time.Time `json:"timestamp"`
}
