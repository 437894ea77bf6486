package session

import (
	"sync"

	"boscov/client/internal/domain/models"
)

// NewMemoryStore returns a Store backed by memory, for tests and previews.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

type MemoryStore struct {
	mu   sync.Mutex
	sess *models.Session
}

func (s *MemoryStore) Load() (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil, nil
	}
	cp := *s.sess
	return &cp, nil
}

func (s *MemoryStore) Save(sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sess = &cp
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}
