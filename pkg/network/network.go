package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/log"
	"github.com/cbodonnell/dirtydishes/pkg/messages"
	"github.com/cbodonnell/dirtydishes/pkg/sessions"
	"nhooyr.io/websocket"
)

type NetworkManager struct {
	ClientManager  *ClientManager
	SessionManager *sessions.SessionManager
	WSServer       *WSServer
}

type NewNetworkManagerOptions struct {
	ClientManager  *ClientManager
	SessionManager *sessions.SessionManager
	OriginPatterns []string
}

func NewNetworkManager(options NewNetworkManagerOptions) *NetworkManager {
	n := &NetworkManager{
		ClientManager:  options.ClientManager,
		SessionManager: options.SessionManager,
	}
	n.WSServer = NewWSServer(NewWSServerOptions{
		OriginPatterns:    options.OriginPatterns,
		ConnectHandler:    n.handleConnect,
		DisconnectHandler: n.handleDisconnect,
		MessageHandler:    n.handleMessage,
	})
	return n
}

func (n *NetworkManager) handleConnect(wsConn *websocket.Conn) (uint32, error) {
	clientID, err := n.ClientManager.ConnectClient(wsConn)
	if err != nil {
		return 0, err
	}
	log.Info("Client %d connected", clientID)
	return clientID, nil
}

func (n *NetworkManager) handleDisconnect(clientID uint32) {
	n.ClientManager.DisconnectClient(clientID)
	log.Info("Client %d disconnected", clientID)
}

func (n *NetworkManager) handleMessage(ctx context.Context, clientID uint32, message *messages.Message) {
	if message.ClientID != 0 && message.ClientID != clientID {
		log.Warn("Client %d sent a message as client %d, ignoring", clientID, message.ClientID)
		return
	}

	client, err := n.ClientManager.GetClient(clientID)
	if err != nil {
		log.Error("Failed to get client: %v", err)
		return
	}

	switch message.Type {
	case messages.MessageTypeClientJoin:
		sessionID, err := n.handleClientJoin(clientID, message)
		if err != nil {
			log.Error("Failed to handle client join: %v", err)
			if err := n.sendServerJoinFailure(ctx, clientID, err.Error()); err != nil {
				log.Error("Failed to send server join failure: %v", err)
			}
			return
		}
		log.Info("Client %d joined session %s", clientID, sessionID)
		if err := n.sendServerJoinSuccess(ctx, clientID, sessionID); err != nil {
			log.Error("Failed to send server join success: %v", err)
			return
		}
		if err := n.sendKitchenSnapshot(ctx, clientID, sessionID); err != nil {
			log.Error("Failed to send kitchen snapshot: %v", err)
		}
	case messages.MessageTypeClientAction:
		if client.SessionID == "" {
			log.Warn("Client %d sent an action before joining a session", clientID)
			return
		}
		if err := n.handleClientAction(client.SessionID, message); err != nil {
			log.Error("Failed to handle client action: %v", err)
		}
	case messages.MessageTypeClientPing:
		if client.SessionID != "" {
			n.SessionManager.Touch(client.SessionID)
		}
		if err := n.handleClientPing(ctx, clientID); err != nil {
			log.Error("Failed to handle client ping: %v", err)
		}
	default:
		log.Warn("Unhandled message type from client %d: %s", clientID, message.Type)
	}
}

// handleClientJoin attaches the client to the requested session, or to a
// new one when no session is requested.
func (n *NetworkManager) handleClientJoin(clientID uint32, message *messages.Message) (string, error) {
	clientJoin := &messages.ClientJoin{}
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, clientJoin); err != nil {
			return "", fmt.Errorf("failed to unmarshal client join: %v", err)
		}
	}

	var session *sessions.Session
	var err error
	if clientJoin.SessionID != "" {
		session, err = n.SessionManager.Get(clientJoin.SessionID)
	} else {
		session, err = n.SessionManager.Create()
	}
	if err != nil {
		return "", err
	}

	if err := n.ClientManager.JoinSession(clientID, session.ID); err != nil {
		return "", fmt.Errorf("failed to join session: %v", err)
	}

	return session.ID, nil
}

func (n *NetworkManager) handleClientAction(sessionID string, message *messages.Message) error {
	clientAction := &messages.ClientAction{}
	if err := json.Unmarshal(message.Payload, clientAction); err != nil {
		return fmt.Errorf("failed to unmarshal client action: %v", err)
	}

	action, err := clientAction.ToAction()
	if err != nil {
		return err
	}

	session, err := n.SessionManager.Get(sessionID)
	if err != nil {
		return err
	}

	return session.Kitchen.Enqueue(action)
}

func (n *NetworkManager) handleClientPing(ctx context.Context, clientID uint32) error {
	m := &messages.Message{
		ClientID: 0,
		Type:     messages.MessageTypeServerPong,
		Payload:  nil,
	}

	if err := n.SendMessageToClient(ctx, clientID, m); err != nil {
		return fmt.Errorf("failed to write pong message to client: %v", err)
	}

	return nil
}

func (n *NetworkManager) sendServerJoinSuccess(ctx context.Context, clientID uint32, sessionID string) error {
	msg, err := messages.NewMessage(0, messages.MessageTypeServerJoinSuccess, &messages.ServerJoinSuccess{
		ClientID:  clientID,
		SessionID: sessionID,
	})
	if err != nil {
		return err
	}

	return n.SendMessageToClient(ctx, clientID, msg)
}

func (n *NetworkManager) sendServerJoinFailure(ctx context.Context, clientID uint32, reason string) error {
	msg, err := messages.NewMessage(0, messages.MessageTypeServerJoinFailure, &messages.ServerJoinFailure{
		Reason: reason,
	})
	if err != nil {
		return err
	}

	return n.SendMessageToClient(ctx, clientID, msg)
}

// sendKitchenSnapshot sends the current kitchen to a client that just
// joined, so it does not wait for the next change to draw something.
func (n *NetworkManager) sendKitchenSnapshot(ctx context.Context, clientID uint32, sessionID string) error {
	session, err := n.SessionManager.Get(sessionID)
	if err != nil {
		return err
	}

	state, err := session.Kitchen.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to get kitchen state: %v", err)
	}

	msg, err := messages.NewMessage(0, messages.MessageTypeServerKitchenUpdate, &messages.ServerKitchenUpdate{
		SessionID: sessionID,
		Timestamp: time.Now().UnixMilli(),
		State:     state,
	})
	if err != nil {
		return err
	}

	return n.SendMessageToClient(ctx, clientID, msg)
}

// SendMessageToSession sends a message to every client that joined the session.
func (n *NetworkManager) SendMessageToSession(ctx context.Context, sessionID string, msg *messages.Message) error {
	var errs []error
	for _, client := range n.ClientManager.GetClientsInSession(sessionID) {
		if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
			errs = append(errs, fmt.Errorf("client %d: %v", client.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (n *NetworkManager) SendMessageToClient(ctx context.Context, clientID uint32, msg *messages.Message) error {
	client, err := n.ClientManager.GetClient(clientID)
	if err != nil {
		return fmt.Errorf("failed to get client %d: %v", clientID, err)
	}

	if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
		return fmt.Errorf("failed to send message to client %d: %v", clientID, err)
	}

	return nil
}
