package queue

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelguard/channel-guard/internal/types"
)

func TestNewPublishing(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := types.Event{
		Type:          types.EventBlockerActivated,
		ChannelID:     "992028868678647809",
		Ratio:         0.28,
		FeeRatePPM:    17000,
		PreviousFee:   1000,
		MaxHTLCSat:    1_500_000,
		BlockerActive: true,
		Timestamp:     ts,
	}

	msg, err := newPublishing(ev)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "BLOCKER_ACTIVATED", msg.Type)
	assert.Equal(t, ts, msg.Timestamp)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "BLOCKER_ACTIVATED", body["type"])
	assert.Equal(t, "992028868678647809", body["channel_id"])
	assert.EqualValues(t, 17000, body["fee_rate_ppm"])
	assert.EqualValues(t, 1000, body["previous_fee_ppm"])
	assert.Equal(t, true, body["blocker_active"])
}

func TestNoopPublisher(t *testing.T) {
	var publisher EventPublisher = NoopPublisher{}
	assert.NoError(t, publisher.PublishEvent(t.Context(), types.Event{Type: types.EventHTLCUpdated}))
	publisher.Shutdown()
}
