package credential

import (
	"context"
	"sync"
)

// MemoryStore keeps credentials for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	holder Holder
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) (Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneHolder(s.holder), nil
}

func (s *MemoryStore) Set(_ context.Context, h Holder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.holder = cloneHolder(h)

	return nil
}

func (s *MemoryStore) SetAccessToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.holder.AccessToken = token

	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.holder = Holder{}

	return nil
}

func cloneHolder(h Holder) Holder {
	if h.User != nil {
		u := *h.User
		h.User = &u
	}
	return h
}
