package credential

import (
	"context"
	"sync"
)

// MemoryStore keeps the credential in process memory. It is the default
// store for a single-process agent, playing the role browser local storage
// plays for the web client.
type MemoryStore struct {
	mu   sync.RWMutex
	cred Credential
	set  bool
	csrf string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set(_ context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	s.set = true
	return nil
}

func (s *MemoryStore) Get(_ context.Context) (Credential, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return Credential{}, false, nil
	}
	return s.cred, true, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{}
	s.set = false
	s.csrf = ""
	return nil
}

func (s *MemoryStore) SetCSRFToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.csrf = token
	return nil
}

func (s *MemoryStore) CSRFToken(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.csrf, nil
}
