package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/log"
	"github.com/cbodonnell/dirtydishes/pkg/messages"
	"github.com/gorilla/websocket"
)

type joinResult struct {
	joined *messages.ServerJoinSuccess
	err    error
}

// WSClient represents a WebSocket client.
type WSClient struct {
	serverAddr string
	conn       *websocket.Conn
	writeLock  sync.Mutex
	updateChan chan *messages.ServerKitchenUpdate
	joinChan   chan<- joinResult
	pongChan   chan<- time.Time
}

// NewWSClient creates a new WebSocket client.
func NewWSClient(serverAddr string, updateChan chan *messages.ServerKitchenUpdate, joinChan chan<- joinResult, pongChan chan<- time.Time) *WSClient {
	return &WSClient{
		serverAddr: serverAddr,
		updateChan: updateChan,
		joinChan:   joinChan,
		pongChan:   pongChan,
	}
}

// Connect establishes a connection to the WebSocket server.
func (c *WSClient) Connect(ctx context.Context) error {
	log.Info("Connecting to WebSocket server at %s", c.serverAddr)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.serverAddr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %v", err)
	}
	conn.SetReadLimit(messages.MaxMessageSize)
	c.conn = conn
	return nil
}

// HandleMessages reads from the connection until it closes or ctx is done.
func (c *WSClient) HandleMessages(ctx context.Context) error {
	defer c.conn.Close()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			// unblocks ReadMessage
			c.conn.Close()
		case <-stop:
		}
	}()

	for {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrConnectionClosedByServer
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error("Error reading WebSocket message from %s: %v", c.conn.RemoteAddr().String(), err)
			}
			return err
		}

		if err := c.handleMessage(ctx, b); err != nil {
			log.Error("Failed to handle message: %v", err)
		}
	}
}

// handleMessage processes a received message.
func (c *WSClient) handleMessage(ctx context.Context, b []byte) error {
	msg, err := messages.DeserializeMessage(b)
	if err != nil {
		return fmt.Errorf("failed to deserialize message: %v", err)
	}
	log.Trace("Received message from WebSocket server of type %s", msg.Type)

	switch msg.Type {
	case messages.MessageTypeServerJoinSuccess:
		joined := &messages.ServerJoinSuccess{}
		if err := json.Unmarshal(msg.Payload, joined); err != nil {
			return fmt.Errorf("failed to deserialize server join success message: %v", err)
		}
		c.sendJoinResult(ctx, joinResult{joined: joined})
	case messages.MessageTypeServerJoinFailure:
		failure := &messages.ServerJoinFailure{}
		if err := json.Unmarshal(msg.Payload, failure); err != nil {
			return fmt.Errorf("failed to deserialize server join failure message: %v", err)
		}
		c.sendJoinResult(ctx, joinResult{err: &JoinError{Reason: failure.Reason}})
	case messages.MessageTypeServerKitchenUpdate:
		update := &messages.ServerKitchenUpdate{}
		if err := json.Unmarshal(msg.Payload, update); err != nil {
			return fmt.Errorf("failed to deserialize server kitchen update message: %v", err)
		}
		c.sendUpdate(update)
	case messages.MessageTypeServerPong:
		select {
		case c.pongChan <- time.Now():
		default:
		}
	default:
		return fmt.Errorf("received unexpected message type from WebSocket server: %s", msg.Type)
	}

	return nil
}

func (c *WSClient) sendJoinResult(ctx context.Context, result joinResult) {
	select {
	case c.joinChan <- result:
	case <-ctx.Done():
	}
}

// sendUpdate makes room for update by discarding the oldest queued one
// when the reader falls behind. Every update is a full snapshot, so the
// newest one is the one worth keeping.
func (c *WSClient) sendUpdate(update *messages.ServerKitchenUpdate) {
	select {
	case c.updateChan <- update:
		return
	default:
	}
	select {
	case <-c.updateChan:
		log.Debug("Update channel is full, dropping oldest kitchen update")
	default:
	}
	select {
	case c.updateChan <- update:
	default:
		log.Debug("Update channel is full, dropping kitchen update")
	}
}

// Close closes the WebSocket connection.
func (c *WSClient) Close() error {
	if c.conn == nil {
		log.Warn("WebSocket connection is already closed")
		return nil
	}
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	err := c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		log.Debug("Failed to write close message: %v", err)
	}
	return c.conn.Close()
}

// SendMessage sends a message to the WebSocket server.
func (c *WSClient) SendMessage(msg *messages.Message) error {
	if c.conn == nil {
		return ErrNotConnected
	}

	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}
