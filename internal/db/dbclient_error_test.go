package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/channelguard/channel-guard/internal/types"
)

func TestWrapMongoError(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		wantConnectivity bool
	}{
		{
			name:             "network error",
			err:              mongo.CommandError{Message: "connection reset", Labels: []string{"NetworkError"}},
			wantConnectivity: true,
		},
		{
			name:             "client disconnected",
			err:              mongo.ErrClientDisconnected,
			wantConnectivity: true,
		},
		{
			name:             "duplicate key",
			err:              mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}},
			wantConnectivity: false,
		},
		{
			name:             "plain error",
			err:              errors.New("boom"),
			wantConnectivity: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapMongoError("failed to save state of channel 1", tt.err)
			assert.ErrorContains(t, err, tt.err.Error())
			assert.Equal(t, tt.wantConnectivity, types.IsConnectivityError(err))
			assert.Contains(t, err.Error(), "failed to save state of channel 1")
		})
	}
}
