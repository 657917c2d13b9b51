package store

import (
	"context"

	"librisync/internal/users/models"
)

// Store is the Users service's view of the relational store. Rows come back
// with the email field still encrypted; decryption is the service's job.
type Store interface {
	// GetUser returns one user or sentinel.ErrNotFound.
	GetUser(ctx context.Context, userID int64) (*models.User, error)

	// ListUsers returns all users ordered by id.
	ListUsers(ctx context.Context) ([]models.User, error)
}
