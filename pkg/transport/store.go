package transport

import (
	"context"
	"sync"
)

// SessionStore persists the current session across process restarts. Load
// returns (nil, nil) when no session is stored. Implementations must be safe
// for concurrent use.
type SessionStore interface {
	Load(ctx context.Context) (*RawSession, error)
	Save(ctx context.Context, session *RawSession) error
	Clear(ctx context.Context) error
}

// memoryStore keeps the session in process memory. It is the default store
// and sufficient for single-process deployments and tests.
type memoryStore struct {
	mu      sync.RWMutex
	session *RawSession
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore() SessionStore {
	return &memoryStore{}
}

func (s *memoryStore) Load(ctx context.Context) (*RawSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, nil
	}
	cp := *s.session
	return &cp, nil
}

func (s *memoryStore) Save(ctx context.Context, session *RawSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session == nil {
		s.session = nil
		return nil
	}
	cp := *session
	s.session = &cp
	return nil
}

func (s *memoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

var _ SessionStore = (*memoryStore)(nil)
