package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

// MemoryStore keeps challenges in-process. All operations run under a single
// mutex, which makes Consume trivially atomic.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[string]Challenge
}

// NewMemoryStore constructs an empty in-memory challenge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{challenges: make(map[string]Challenge)}
}

func (s *MemoryStore) Put(ctx context.Context, ch Challenge) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[ch.Identifier] = ch
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, identifier string) (Challenge, error) {
	if err := ctx.Err(); err != nil {
		return Challenge{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[identifier]
	if !ok {
		return Challenge{}, ErrNoChallenge
	}
	return ch, nil
}

func (s *MemoryStore) Replace(ctx context.Context, identifier, code string, expiresAt time.Time) (Challenge, error) {
	if err := ctx.Err(); err != nil {
		return Challenge{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[identifier]
	if !ok {
		return Challenge{}, ErrNoChallenge
	}
	ch.Code = code
	ch.ExpiresAt = expiresAt
	s.challenges[identifier] = ch
	return ch, nil
}

func (s *MemoryStore) Consume(ctx context.Context, identifier string, purpose Purpose, code string, now time.Time) (Challenge, error) {
	if err := ctx.Err(); err != nil {
		return Challenge{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[identifier]
	if !ok || ch.Purpose != purpose {
		return Challenge{}, ErrNoChallenge
	}
	if now.After(ch.ExpiresAt) {
		delete(s.challenges, identifier)
		return Challenge{}, ErrExpired
	}
	if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) != 1 {
		return Challenge{}, ErrInvalidCode
	}

	delete(s.challenges, identifier)
	return ch, nil
}

func (s *MemoryStore) Delete(ctx context.Context, identifier string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.challenges, identifier)
	return nil
}
