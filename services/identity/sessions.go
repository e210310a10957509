package identitysvc

import (
	"context"
	"sync"
	"time"
)

// Session makes a token valid until sign-out or expiry.
type Session struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore keeps the live sessions. Get returns nil for unknown or expired sessions.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

var _ SessionStore = (*memorySessionStore)(nil)

// NewMemorySessionStore returns an in-process SessionStore.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]Session)}
}

func (st *memorySessionStore) Save(_ context.Context, s Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	return nil
}

func (st *memorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.Expired(time.Now()) {
		st.mu.Lock()
		delete(st.sessions, id)
		st.mu.Unlock()
		return nil, nil
	}
	return &s, nil
}

func (st *memorySessionStore) Delete(_ context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
	return nil
}
