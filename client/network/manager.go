package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/log"
	"github.com/cbodonnell/dirtydishes/pkg/messages"
)

const (
	DefaultServerURL = "ws://localhost:8080/ws"

	// JoinTimeout bounds the wait for the server to answer a join
	JoinTimeout = 5 * time.Second
	// PingInterval is how often the connection is pinged, which also keeps
	// the session from being reaped while the client is open
	PingInterval = 5 * time.Second
)

// NetworkManager connects a client to one kitchen session on the server.
type NetworkManager struct {
	wsClient        *WSClient
	updateChan      chan *messages.ServerKitchenUpdate
	joinChan        chan joinResult
	pongChan        chan time.Time
	errChan         chan error
	cancelClientCtx context.CancelFunc
	clientWaitGroup *sync.WaitGroup
	lock            sync.Mutex
	clientID        uint32
	sessionID       string
	ping            float64
	recentRTTs      rttSamples
	pingSentAt      time.Time
}

type NewNetworkManagerOptions struct {
	ServerURL string
}

// NewNetworkManager creates a new network manager.
func NewNetworkManager(opts NewNetworkManagerOptions) *NetworkManager {
	if opts.ServerURL == "" {
		opts.ServerURL = DefaultServerURL
	}

	m := &NetworkManager{
		updateChan:      make(chan *messages.ServerKitchenUpdate, 16),
		joinChan:        make(chan joinResult, 1),
		pongChan:        make(chan time.Time, 1),
		errChan:         make(chan error, 1),
		clientWaitGroup: &sync.WaitGroup{},
	}
	m.wsClient = NewWSClient(opts.ServerURL, m.updateChan, m.joinChan, m.pongChan)
	return m
}

// Start connects to the server and joins sessionID, or a new session when
// sessionID is empty. It returns once the server has answered the join.
func (m *NetworkManager) Start(ctx context.Context, sessionID string) error {
	clientCtx, cancel := context.WithCancel(context.Background())
	m.cancelClientCtx = cancel

	if err := m.wsClient.Connect(ctx); err != nil {
		cancel()
		return err
	}

	m.clientWaitGroup.Add(1)
	go func() {
		defer m.clientWaitGroup.Done()
		if err := m.wsClient.HandleMessages(clientCtx); err != nil {
			select {
			case m.errChan <- err:
			default:
			}
		}
	}()

	joined, err := m.join(ctx, sessionID)
	if err != nil {
		m.Stop()
		return err
	}

	m.lock.Lock()
	m.clientID = joined.ClientID
	m.sessionID = joined.SessionID
	m.lock.Unlock()
	log.Info("Joined session %s with client ID %d", joined.SessionID, joined.ClientID)

	m.clientWaitGroup.Add(1)
	go func() {
		defer m.clientWaitGroup.Done()
		m.startPing(clientCtx)
	}()

	return nil
}

func (m *NetworkManager) join(ctx context.Context, sessionID string) (*messages.ServerJoinSuccess, error) {
	msg, err := messages.NewMessage(0, messages.MessageTypeClientJoin, &messages.ClientJoin{SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	if err := m.wsClient.SendMessage(msg); err != nil {
		return nil, fmt.Errorf("failed to send client join message: %v", err)
	}

	select {
	case result := <-m.joinChan:
		return result.joined, result.err
	case err := <-m.errChan:
		return nil, fmt.Errorf("connection lost while joining: %v", err)
	case <-time.After(JoinTimeout):
		return nil, fmt.Errorf("timed out waiting for server join response")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *NetworkManager) startPing(ctx context.Context) {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	if err := m.sendPing(); err != nil {
		log.Error("Failed to ping server: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.sendPing(); err != nil {
				log.Error("Failed to ping server: %v", err)
			}
		case receivedAt := <-m.pongChan:
			m.recordPong(receivedAt)
		}
	}
}

func (m *NetworkManager) sendPing() error {
	m.lock.Lock()
	m.pingSentAt = time.Now()
	clientID := m.clientID
	m.lock.Unlock()

	return m.wsClient.SendMessage(&messages.Message{
		ClientID: clientID,
		Type:     messages.MessageTypeClientPing,
	})
}

func (m *NetworkManager) recordPong(receivedAt time.Time) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.pingSentAt.IsZero() {
		return
	}
	rtt := receivedAt.Sub(m.pingSentAt).Milliseconds()
	m.pingSentAt = time.Time{}

	m.recentRTTs = m.recentRTTs.add(rtt)
	m.ping = m.recentRTTs.average()
	log.Trace("Ping: %.1fms", m.ping)
}

// SendAction asks the server to apply a player action. The result arrives
// as a kitchen update.
func (m *NetworkManager) SendAction(action *messages.ClientAction) error {
	msg, err := messages.NewMessage(m.ClientID(), messages.MessageTypeClientAction, action)
	if err != nil {
		return err
	}
	return m.wsClient.SendMessage(msg)
}

// Stop stops the network manager and closes the connection.
func (m *NetworkManager) Stop() {
	if m.cancelClientCtx == nil {
		log.Warn("Network manager already stopped")
		return
	}
	m.cancelClientCtx()
	m.cancelClientCtx = nil

	// the read loop may have closed the connection already
	if err := m.wsClient.Close(); err != nil {
		log.Debug("Failed to close WebSocket connection: %v", err)
	}

	log.Debug("Waiting for clients to stop")
	m.clientWaitGroup.Wait()

	m.lock.Lock()
	m.clientID = 0
	m.lock.Unlock()

	log.Info("Network manager stopped")
}

// Updates delivers every kitchen snapshot the server broadcasts.
func (m *NetworkManager) Updates() <-chan *messages.ServerKitchenUpdate {
	return m.updateChan
}

// ErrChan reports the error that ended the connection.
func (m *NetworkManager) ErrChan() <-chan error {
	return m.errChan
}

func (m *NetworkManager) ClientID() uint32 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.clientID
}

func (m *NetworkManager) SessionID() string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.sessionID
}

// Ping returns the average round trip time in milliseconds.
func (m *NetworkManager) Ping() float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.ping
}
