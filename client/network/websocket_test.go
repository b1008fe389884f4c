package network

import (
	"testing"

	"github.com/cbodonnell/dirtydishes/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSClient_sendUpdateKeepsNewest(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		sent     []int64
		want     []int64
	}{
		{
			name:     "room to spare",
			capacity: 4,
			sent:     []int64{1, 2},
			want:     []int64{1, 2},
		},
		{
			name:     "single slot",
			capacity: 1,
			sent:     []int64{1, 2},
			want:     []int64{2},
		},
		{
			name:     "oldest dropped first",
			capacity: 2,
			sent:     []int64{1, 2, 3, 4},
			want:     []int64{3, 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates := make(chan *messages.ServerKitchenUpdate, tt.capacity)
			c := NewWSClient("", updates, nil, nil)

			for _, ts := range tt.sent {
				c.sendUpdate(&messages.ServerKitchenUpdate{Timestamp: ts})
			}

			require.Len(t, updates, len(tt.want))
			var got []int64
			for len(updates) > 0 {
				got = append(got, (<-updates).Timestamp)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWSClient_sendUpdateUnbuffered(t *testing.T) {
	updates := make(chan *messages.ServerKitchenUpdate)
	c := NewWSClient("", updates, nil, nil)

	// with no reader waiting the update is dropped instead of blocking
	c.sendUpdate(&messages.ServerKitchenUpdate{Timestamp: 1})
	assert.Empty(t, updates)
}
