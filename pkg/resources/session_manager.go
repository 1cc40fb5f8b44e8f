// Package resources tracks the interpreter sessions served over the network.
package resources

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"
)

var (
	// ErrSessionLimit is returned when every session slot is taken.
	ErrSessionLimit = errors.New("session limit reached")
	// ErrSessionActive is returned when the session id is already connected.
	ErrSessionActive = errors.New("session already active")
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
)

// Session is one connected interpreter.
type Session struct {
	ID           string
	RemoteAddr   string
	CreatedAt    time.Time
	LastActivity time.Time

	cancel context.CancelFunc
}

// SessionManager registers sessions and enforces the session limit.
type SessionManager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	maxSessions int
}

// NewSessionManager creates a manager admitting at most maxSessions sessions.
func NewSessionManager(maxSessions int) *SessionManager {
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
	}
}

// NewSessionManagerFromConfig reads the limit from [Session] max_sessions.
func NewSessionManagerFromConfig() *SessionManager {
	return NewSessionManager(configuration.GetInt("Session", "max_sessions", 1))
}

// RegisterSession admits a session. cancel is called when the session is
// unregistered or the manager shuts down.
func (sm *SessionManager) RegisterSession(id, remoteAddr string, cancel context.CancelFunc) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[id]; exists {
		return fmt.Errorf("%w: %s", ErrSessionActive, id)
	}
	if len(sm.sessions) >= sm.maxSessions {
		logger.Warn(logger.AreaSession, "session %s from %s refused, %d of %d active",
			id, remoteAddr, len(sm.sessions), sm.maxSessions)
		return ErrSessionLimit
	}

	now := time.Now()
	sm.sessions[id] = &Session{
		ID:           id,
		RemoteAddr:   remoteAddr,
		CreatedAt:    now,
		LastActivity: now,
		cancel:       cancel,
	}
	logger.Info(logger.AreaSession, "session registered: %s (%s)", id, remoteAddr)
	return nil
}

// UnregisterSession removes a session and cancels its context.
func (sm *SessionManager) UnregisterSession(id string) error {
	sm.mu.Lock()
	session, exists := sm.sessions[id]
	if exists {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if session.cancel != nil {
		session.cancel()
	}
	logger.Info(logger.AreaSession, "session unregistered: %s (duration %v)",
		id, time.Since(session.CreatedAt).Round(time.Second))
	return nil
}

// UpdateActivity records input from a session.
func (sm *SessionManager) UpdateActivity(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if session, ok := sm.sessions[id]; ok {
		session.LastActivity = time.Now()
	}
}

// GetSession returns a copy of the session record.
func (sm *SessionManager) GetSession(id string) (Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	session, ok := sm.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return *session, nil
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

// Shutdown cancels every session.
func (sm *SessionManager) Shutdown() {
	sm.mu.Lock()
	sessions := sm.sessions
	sm.sessions = make(map[string]*Session)
	sm.mu.Unlock()

	for id, session := range sessions {
		if session.cancel != nil {
			session.cancel()
		}
		logger.Debug(logger.AreaSession, "session %s cancelled on shutdown", id)
	}
}
