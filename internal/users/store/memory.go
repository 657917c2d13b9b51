package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"librisync/internal/users/models"
	"librisync/pkg/sentinel"
)

// MemoryStore is an in-memory Store for unit tests. It counts calls so
// cache-aside tests can assert that a cache hit skipped the store.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[int64]models.User

	getCalls  atomic.Int64
	listCalls atomic.Int64
}

// NewMemory builds a memory store seeded with the given users. Seed emails
// are stored as given; seed them encrypted when the test exercises the
// decryption path.
func NewMemory(seed ...models.User) *MemoryStore {
	users := make(map[int64]models.User, len(seed))
	for _, u := range seed {
		users[u.ID] = u
	}
	return &MemoryStore{users: users}
}

func (s *MemoryStore) GetUser(_ context.Context, userID int64) (*models.User, error) {
	s.getCalls.Add(1)

	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, sentinel.ErrNotFound)
	}
	return &u, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.listCalls.Add(1)

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetCalls reports how many times GetUser ran.
func (s *MemoryStore) GetCalls() int64 {
	return s.getCalls.Load()
}

// ListCalls reports how many times ListUsers ran.
func (s *MemoryStore) ListCalls() int64 {
	return s.listCalls.Load()
}
