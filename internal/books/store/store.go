package store

import (
	"context"

	"librisync/internal/books/models"
)

// Store is the Books service's view of the relational store.
type Store interface {
	// ListBooks returns the full catalog ordered by id.
	ListBooks(ctx context.Context) ([]models.Book, error)

	// SetAvailability applies a loan decision to one book. Unknown book ids
	// are ignored (zero rows updated is success), and setting the same value
	// twice is a no-op, so the operation is safe under queue redelivery.
	SetAvailability(ctx context.Context, bookID int64, available bool) error
}
