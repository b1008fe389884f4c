package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/dirtydishes/pkg/clock"
	"github.com/cbodonnell/dirtydishes/pkg/game"
	"github.com/cbodonnell/dirtydishes/pkg/log"
	"github.com/google/uuid"
)

// KitchenFactory builds the kitchen for a new session.
type KitchenFactory func(sessionID string) *game.KitchenManager

// Session is one isolated kitchen and the bookkeeping needed to tear it down.
type Session struct {
	ID        string
	Kitchen   *game.KitchenManager
	CreatedAt time.Time

	lastSeen time.Time
	cancel   context.CancelFunc
}

// SessionManager runs one kitchen loop per session.
type SessionManager struct {
	ctx    context.Context
	cancel context.CancelFunc

	sessions     map[string]*Session
	sessionsLock sync.RWMutex
	newKitchen   KitchenFactory
	clock        clock.Clock
	maxSessions  int
}

type NewSessionManagerOptions struct {
	NewKitchen KitchenFactory
	Clock      clock.Clock
	// MaxSessions caps the number of live sessions. Zero means no limit.
	MaxSessions int
}

func NewSessionManager(opts NewSessionManagerOptions) *SessionManager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &SessionManager{
		ctx:         ctx,
		cancel:      cancel,
		sessions:    make(map[string]*Session),
		newKitchen:  opts.NewKitchen,
		clock:       opts.Clock,
		maxSessions: opts.MaxSessions,
	}
	if m.clock == nil {
		m.clock = clock.New()
	}
	return m
}

// Create starts a new session with a fresh kitchen.
func (m *SessionManager) Create() (*Session, error) {
	m.sessionsLock.Lock()
	defer m.sessionsLock.Unlock()

	if m.ctx.Err() != nil {
		return nil, fmt.Errorf("session manager is closed")
	}
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return nil, ErrTooManySessions
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(m.ctx)
	now := m.clock.Now()
	session := &Session{
		ID:        id,
		Kitchen:   m.newKitchen(id),
		CreatedAt: now,
		lastSeen:  now,
		cancel:    cancel,
	}
	m.sessions[id] = session

	go func() {
		if err := session.Kitchen.Start(ctx); err != nil {
			log.Error("Kitchen for session %s stopped: %v", id, err)
		}
	}()

	log.Info("Session %s created", id)
	return session, nil
}

// Get returns a live session and marks it as used.
func (m *SessionManager) Get(sessionID string) (*Session, error) {
	m.sessionsLock.Lock()
	defer m.sessionsLock.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, &ErrNotFound{SessionID: sessionID}
	}
	session.lastSeen = m.clock.Now()
	return session, nil
}

// GetOrCreate returns the session with the given ID, or a new one when the
// ID is empty or unknown. The bool is true when a session was created.
func (m *SessionManager) GetOrCreate(sessionID string) (*Session, bool, error) {
	if sessionID != "" {
		session, err := m.Get(sessionID)
		if err == nil {
			return session, false, nil
		}
		if !IsNotFound(err) {
			return nil, false, err
		}
	}
	session, err := m.Create()
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// Touch marks a session as used without returning it.
func (m *SessionManager) Touch(sessionID string) {
	m.sessionsLock.Lock()
	defer m.sessionsLock.Unlock()
	if session, ok := m.sessions[sessionID]; ok {
		session.lastSeen = m.clock.Now()
	}
}

// Close tears down a session and waits for its kitchen to stop.
func (m *SessionManager) Close(sessionID string) error {
	m.sessionsLock.Lock()
	session, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.sessionsLock.Unlock()

	if !ok {
		return &ErrNotFound{SessionID: sessionID}
	}
	stop(session)
	log.Info("Session %s closed", sessionID)
	return nil
}

// CloseIdle tears down every session not used within ttl of now.
func (m *SessionManager) CloseIdle(now time.Time, ttl time.Duration) int {
	m.sessionsLock.Lock()
	var idle []*Session
	for id, session := range m.sessions {
		if now.Sub(session.lastSeen) > ttl {
			idle = append(idle, session)
			delete(m.sessions, id)
		}
	}
	m.sessionsLock.Unlock()

	for _, session := range idle {
		stop(session)
		log.Debug("Session %s closed after being idle since %s", session.ID, session.lastSeen.Format(time.RFC3339))
	}
	return len(idle)
}

// CloseAll tears down every session. No session can be created afterwards.
func (m *SessionManager) CloseAll() {
	m.sessionsLock.Lock()
	m.cancel()
	all := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		all = append(all, session)
	}
	m.sessions = make(map[string]*Session)
	m.sessionsLock.Unlock()

	for _, session := range all {
		stop(session)
	}
}

func (m *SessionManager) Count() int {
	m.sessionsLock.RLock()
	defer m.sessionsLock.RUnlock()
	return len(m.sessions)
}

func stop(session *Session) {
	session.cancel()
	<-session.Kitchen.Done()
}
