package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/log"
	"github.com/cbodonnell/dirtydishes/pkg/messages"
)

// Broadcaster delivers a message to every client attached to a session.
type Broadcaster interface {
	SendMessageToSession(ctx context.Context, sessionID string, msg *messages.Message) error
}

type ServerMessageWorker struct {
	broadcaster       Broadcaster
	serverMessageChan <-chan ServerMessage
	writeTimeout      time.Duration
}

// ServerMessage is a message a kitchen publishes for the clients of its session.
type ServerMessage struct {
	SessionID string
	Type      messages.MessageType
	Message   interface{}
}

type NewServerMessageWorkerOptions struct {
	Broadcaster       Broadcaster
	ServerMessageChan <-chan ServerMessage
	// WriteTimeout bounds a single broadcast. Zero means no timeout.
	WriteTimeout time.Duration
}

func NewServerMessageWorker(opts NewServerMessageWorkerOptions) *ServerMessageWorker {
	return &ServerMessageWorker{
		broadcaster:       opts.Broadcaster,
		serverMessageChan: opts.ServerMessageChan,
		writeTimeout:      opts.WriteTimeout,
	}
}

func (w *ServerMessageWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-w.serverMessageChan:
			if err := w.handleServerMessage(ctx, msg); err != nil {
				log.Error("Failed to handle %s message for session %s: %v", msg.Type, msg.SessionID, err)
			}
		}
	}
}

func (w *ServerMessageWorker) handleServerMessage(ctx context.Context, msg ServerMessage) error {
	switch msg.Type {
	case messages.MessageTypeServerKitchenUpdate:
		if _, ok := msg.Message.(*messages.ServerKitchenUpdate); !ok {
			return fmt.Errorf("failed to cast server kitchen update message")
		}
	default:
		return fmt.Errorf("unknown server message type: %v", msg.Type)
	}

	message, err := messages.NewMessage(0, msg.Type, msg.Message)
	if err != nil {
		return err
	}

	if w.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.writeTimeout)
		defer cancel()
	}

	if err := w.broadcaster.SendMessageToSession(ctx, msg.SessionID, message); err != nil {
		return fmt.Errorf("failed to broadcast: %v", err)
	}

	return nil
}
