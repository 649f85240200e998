package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const maxCreateAttempts = 3

// MemoryStore keeps transcripts in process memory. Entries never expire; they
// live until Delete or process exit.
type MemoryStore struct {
	cache *cache.Cache
	locks *KeyedMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
		locks: NewKeyedMutex(),
	}
}

func (s *MemoryStore) Create(_ context.Context) (string, error) {
	for i := 0; i < maxCreateAttempts; i++ {
		id := uuid.NewString()
		if err := s.cache.Add(id, "", cache.NoExpiration); err == nil {
			return id, nil
		}
	}
	return "", fmt.Errorf("allocate session id failed after %d attempts", maxCreateAttempts)
}

func (s *MemoryStore) Transcript(_ context.Context, id string) (string, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return "", ErrSessionNotFound
	}
	return v.(string), nil
}

func (s *MemoryStore) Append(_ context.Context, id, text string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	v, ok := s.cache.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	// Replace fails if the entry vanished between Get and here.
	if err := s.cache.Replace(id, v.(string)+text, cache.NoExpiration); err != nil {
		return ErrSessionNotFound
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, ok := s.cache.Get(id); !ok {
		return ErrSessionNotFound
	}
	s.cache.Delete(id)
	return nil
}
