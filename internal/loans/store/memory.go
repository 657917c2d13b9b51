package store

import (
	"context"
	"sync"

	"librisync/internal/loans/models"
)

// MemoryStore is an in-memory Store for unit tests.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[int64]struct{}
	books  map[int64]struct{}
	loans  []models.Loan
	nextID int64
}

// NewMemory builds a memory store seeded with existing user and book ids.
func NewMemory(userIDs, bookIDs []int64) *MemoryStore {
	users := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		users[id] = struct{}{}
	}
	books := make(map[int64]struct{}, len(bookIDs))
	for _, id := range bookIDs {
		books[id] = struct{}{}
	}
	return &MemoryStore{users: users, books: books, nextID: 1}
}

func (s *MemoryStore) UserExists(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[userID]
	return ok, nil
}

func (s *MemoryStore) BookExists(_ context.Context, bookID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.books[bookID]
	return ok, nil
}

func (s *MemoryStore) InsertLoan(_ context.Context, userID, bookID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.loans = append(s.loans, models.Loan{ID: id, UserID: userID, BookID: bookID})
	return id, nil
}

// Loans returns a copy of all inserted loans, for test assertions.
func (s *MemoryStore) Loans() []models.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Loan, len(s.loans))
	copy(out, s.loans)
	return out
}
