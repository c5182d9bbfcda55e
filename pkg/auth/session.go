package auth

import (
	"context"
	"sync"
	"time"
)

// Session tracks one live refresh token, keyed by its JTI
type Session struct {
	JTI       string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionStore defines the interface for tracking live refresh sessions
type SessionStore interface {
	// Record registers a new live session
	Record(ctx context.Context, session *Session) error

	// IsLive reports whether the session for this JTI is still valid
	IsLive(ctx context.Context, jti string) (bool, error)

	// Revoke retires a session; revoking an unknown JTI is a no-op
	Revoke(ctx context.Context, jti string) error
}

// MemorySessionStore implements SessionStore with an in-process map
type MemorySessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewMemorySessionStore creates an in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	store := &MemorySessionStore{
		sessions: make(map[string]*Session),
	}

	// Start cleanup goroutine
	go store.cleanupExpiredSessions()

	return store
}

// Record registers a new live session
func (m *MemorySessionStore) Record(_ context.Context, session *Session) error {
	m.mu.Lock()
	m.sessions[session.JTI] = session
	m.mu.Unlock()
	return nil
}

// IsLive reports whether the session for this JTI is still valid
func (m *MemorySessionStore) IsLive(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[jti]
	if !exists {
		return false, nil
	}
	return !session.IsExpired(), nil
}

// Revoke retires a session
func (m *MemorySessionStore) Revoke(_ context.Context, jti string) error {
	m.mu.Lock()
	delete(m.sessions, jti)
	m.mu.Unlock()
	return nil
}

// cleanupExpiredSessions periodically removes expired sessions
func (m *MemorySessionStore) cleanupExpiredSessions() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		now := time.Now()
		for jti, session := range m.sessions {
			if now.After(session.ExpiresAt) {
				delete(m.sessions, jti)
			}
		}
		m.mu.Unlock()
	}
}
