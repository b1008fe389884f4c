package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	gametypes "github.com/cbodonnell/dirtydishes/pkg/game/types"
	"github.com/cbodonnell/dirtydishes/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) SendMessageToSession(ctx context.Context, sessionID string, msg *messages.Message) error {
	args := m.Called(ctx, sessionID, msg)
	return args.Error(0)
}

type mockIdleCloser struct {
	mock.Mock
}

func (m *mockIdleCloser) CloseIdle(now time.Time, ttl time.Duration) int {
	args := m.Called(now, ttl)
	return args.Int(0)
}

func TestServerMessageWorker_handleServerMessage(t *testing.T) {
	state := gametypes.NewKitchenState()
	state.Cupboard = 3

	tests := []struct {
		name      string
		msg       ServerMessage
		broadcast bool
		wantErr   bool
	}{
		{
			name: "kitchen update is broadcast to the session",
			msg: ServerMessage{
				SessionID: "session-1",
				Type:      messages.MessageTypeServerKitchenUpdate,
				Message: &messages.ServerKitchenUpdate{
					SessionID: "session-1",
					Timestamp: 42,
					State:     state,
				},
			},
			broadcast: true,
		},
		{
			name: "wrong payload type",
			msg: ServerMessage{
				SessionID: "session-1",
				Type:      messages.MessageTypeServerKitchenUpdate,
				Message:   "not an update",
			},
			wantErr: true,
		},
		{
			name: "unknown message type",
			msg: ServerMessage{
				SessionID: "session-1",
				Type:      messages.MessageTypeServerPong,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBroadcaster{}
			if tt.broadcast {
				b.On("SendMessageToSession", mock.Anything, tt.msg.SessionID, mock.MatchedBy(func(m *messages.Message) bool {
					update := &messages.ServerKitchenUpdate{}
					if err := json.Unmarshal(m.Payload, update); err != nil {
						return false
					}
					return m.ClientID == 0 &&
						m.Type == messages.MessageTypeServerKitchenUpdate &&
						update.State.Cupboard == 3
				})).Return(nil).Once()
			}

			w := NewServerMessageWorker(NewServerMessageWorkerOptions{
				Broadcaster:  b,
				WriteTimeout: time.Second,
			})
			err := w.handleServerMessage(context.Background(), tt.msg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			b.AssertExpectations(t)
		})
	}
}

func TestServerMessageWorker_StartStopsOnCancel(t *testing.T) {
	b := &mockBroadcaster{}
	ch := make(chan ServerMessage, 1)
	sent := make(chan struct{})
	b.On("SendMessageToSession", mock.Anything, "s", mock.Anything).Return(nil).Once().Run(func(mock.Arguments) {
		close(sent)
	})

	w := NewServerMessageWorker(NewServerMessageWorkerOptions{
		Broadcaster:       b,
		ServerMessageChan: ch,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	ch <- ServerMessage{
		SessionID: "s",
		Type:      messages.MessageTypeServerKitchenUpdate,
		Message:   &messages.ServerKitchenUpdate{SessionID: "s", State: gametypes.NewKitchenState()},
	}

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("message was not broadcast")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	b.AssertExpectations(t)
}

func TestSessionReaperWorker_reap(t *testing.T) {
	closer := &mockIdleCloser{}
	now := time.Unix(1000, 0)
	closer.On("CloseIdle", now, 30*time.Minute).Return(2).Once()

	w := NewSessionReaperWorker(NewSessionReaperWorkerOptions{
		Sessions: closer,
		Interval: time.Minute,
		IdleTTL:  30 * time.Minute,
	})
	w.reap(now)

	closer.AssertExpectations(t)
	require.Equal(t, time.Minute, w.interval)
}
