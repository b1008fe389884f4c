package messages

import (
	"encoding/json"
	"fmt"

	gametypes "github.com/cbodonnell/dirtydishes/pkg/game/types"
)

type MessageType byte

// Message types
const (
	MessageTypeClientPing MessageType = iota + 1
	MessageTypeServerPong
	MessageTypeClientJoin
	MessageTypeServerJoinSuccess
	MessageTypeServerJoinFailure
	MessageTypeClientAction
	MessageTypeServerKitchenUpdate
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeClientPing:
		return "ClientPing"
	case MessageTypeServerPong:
		return "ServerPong"
	case MessageTypeClientJoin:
		return "ClientJoin"
	case MessageTypeServerJoinSuccess:
		return "ServerJoinSuccess"
	case MessageTypeServerJoinFailure:
		return "ServerJoinFailure"
	case MessageTypeClientAction:
		return "ClientAction"
	case MessageTypeServerKitchenUpdate:
		return "ServerKitchenUpdate"
	default:
		return fmt.Sprintf("Unknown(%d)", byte(t))
	}
}

// Message represents a generic message for serialization/deserialization
type Message struct {
	ClientID uint32          `json:"clientID"`
	Type     MessageType     `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

// NewMessage builds a Message with a JSON encoded payload.
// ClientID 0 means the message is from the server.
func NewMessage(clientID uint32, messageType MessageType, payload interface{}) (*Message, error) {
	var b []byte
	if payload != nil {
		var err error
		b, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %v", messageType, err)
		}
	}
	return &Message{
		ClientID: clientID,
		Type:     messageType,
		Payload:  b,
	}, nil
}

// ClientJoin asks to attach to a kitchen session. An empty SessionID opens a new one.
type ClientJoin struct {
	SessionID string `json:"sessionID,omitempty"`
}

type ServerJoinSuccess struct {
	ClientID  uint32 `json:"clientID"`
	SessionID string `json:"sessionID"`
}

type ServerJoinFailure struct {
	Reason string `json:"reason"`
}

// ClientAction is a player action sent over the wire.
type ClientAction struct {
	Action gametypes.ActionType `json:"action"`
	DishID string               `json:"dishID,omitempty"`
	Index  int                  `json:"index,omitempty"`
}

// ToAction converts the wire action into a kitchen action.
func (a *ClientAction) ToAction() (gametypes.Action, error) {
	if !a.Action.IsPlayerAction() {
		return nil, fmt.Errorf("unknown player action: %q", a.Action)
	}
	return gametypes.NewPlayerAction(a.Action, a.DishID, a.Index)
}

// ServerKitchenUpdate carries a full snapshot of a kitchen.
type ServerKitchenUpdate struct {
	SessionID string                  `json:"sessionID"`
	Timestamp int64                   `json:"timestamp"`
	State     *gametypes.KitchenState `json:"state"`
}
