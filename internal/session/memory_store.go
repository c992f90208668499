package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Data
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Data),
	}
}

func (s *MemoryStore) Load(_ context.Context, sid string) (*Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.sessions[sid]
	if !ok {
		return nil, ErrNotFound
	}
	copied := data
	return &copied, nil
}

func (s *MemoryStore) Save(_ context.Context, sid string, data *Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sid] = *data
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sid)
	return nil
}
