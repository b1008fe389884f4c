package messages

import (
	"encoding/json"
	"testing"

	gametypes "github.com/cbodonnell/dirtydishes/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeMessage(t *testing.T) {
	state := gametypes.NewKitchenState()
	state.Pile = append(state.Pile, gametypes.Dish{Type: gametypes.DishTypeWineGlass, ID: "a"})
	state.Sink = &gametypes.Dish{Type: gametypes.DishTypePot, ID: "b"}
	state.Cupboard = 3

	tests := []struct {
		name    string
		message func(t *testing.T) *Message
	}{
		{
			name: "kitchen update",
			message: func(t *testing.T) *Message {
				m, err := NewMessage(0, MessageTypeServerKitchenUpdate, &ServerKitchenUpdate{
					SessionID: "session",
					Timestamp: 1,
					State:     state,
				})
				require.NoError(t, err)
				return m
			},
		},
		{
			name: "empty payload",
			message: func(t *testing.T) *Message {
				return &Message{ClientID: 7, Type: MessageTypeClientPing}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.message(t)

			b, err := SerializeMessage(want)
			require.NoError(t, err)

			got, err := DeserializeMessage(b)
			require.NoError(t, err)

			assert.Equal(t, want.ClientID, got.ClientID)
			assert.Equal(t, want.Type, got.Type)
			assert.Equal(t, len(want.Payload), len(got.Payload))
			if len(want.Payload) > 0 {
				assert.JSONEq(t, string(want.Payload), string(got.Payload))
			}
		})
	}
}

func TestKitchenUpdatePayloadSurvivesTheWire(t *testing.T) {
	state := gametypes.NewKitchenState()
	state.Rack = append(state.Rack, gametypes.Dish{Type: gametypes.DishTypeKnife, ID: "k"})
	state.Notice = "put away the dry dishes first!"

	m, err := NewMessage(0, MessageTypeServerKitchenUpdate, &ServerKitchenUpdate{SessionID: "s", State: state})
	require.NoError(t, err)
	b, err := SerializeMessage(m)
	require.NoError(t, err)
	got, err := DeserializeMessage(b)
	require.NoError(t, err)

	update := &ServerKitchenUpdate{}
	require.NoError(t, json.Unmarshal(got.Payload, update))
	assert.True(t, state.Equal(update.State))
}

func TestDeserializeMessage_Garbage(t *testing.T) {
	_, err := DeserializeMessage([]byte("not a message"))
	assert.Error(t, err)
}

func TestClientAction_ToAction(t *testing.T) {
	action, err := (&ClientAction{Action: gametypes.ActionTypePickUp, DishID: "x"}).ToAction()
	require.NoError(t, err)
	assert.Equal(t, gametypes.PickUpAction{DishID: "x"}, action)

	_, err = (&ClientAction{Action: gametypes.ActionTypeSpawn}).ToAction()
	assert.Error(t, err)
}
