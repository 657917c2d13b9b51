package store

import (
	"context"
	"sort"
	"sync"

	"librisync/internal/books/models"
)

// MemoryStore is an in-memory Store for unit tests.
type MemoryStore struct {
	mu    sync.RWMutex
	books map[int64]models.Book
}

// NewMemory builds a memory store seeded with the given books.
func NewMemory(seed ...models.Book) *MemoryStore {
	books := make(map[int64]models.Book, len(seed))
	for _, b := range seed {
		books[b.ID] = b
	}
	return &MemoryStore{books: books}
}

func (s *MemoryStore) ListBooks(_ context.Context) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) SetAvailability(_ context.Context, bookID int64, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[bookID]
	if !ok {
		// Matches the relational store: updating an unknown id affects zero
		// rows and succeeds.
		return nil
	}
	b.Available = available
	s.books[bookID] = b
	return nil
}

// Book returns the current state of one book, for test assertions.
func (s *MemoryStore) Book(bookID int64) (models.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[bookID]
	return b, ok
}
