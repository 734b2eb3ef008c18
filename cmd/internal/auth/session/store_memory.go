package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu     sync.Mutex
	byHash map[string]Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byHash: make(map[string]Session)}
}

func (s *MemoryStore) Put(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byHash[sess.TokenHash] = sess
	return nil
}

func (s *MemoryStore) GetByTokenHash(_ context.Context, tokenHash string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byHash[tokenHash]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byHash, tokenHash)
	return nil
}

func (s *MemoryStore) DeleteByDevice(_ context.Context, userID int, deviceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for hash, sess := range s.byHash {
		if sess.UserID == userID && sess.DeviceID == deviceID {
			delete(s.byHash, hash)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) DeleteAllForUser(_ context.Context, userID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for hash, sess := range s.byHash {
		if sess.UserID == userID {
			delete(s.byHash, hash)
			removed++
		}
	}
	return removed, nil
}
