package store

import "context"

// Store is the Loans service's view of the relational store. Existence
// checks are independent point lookups; no lock is held between a check and
// the later insert, so two concurrent identical requests can both pass
// validation. That relaxed behavior is deliberate.
type Store interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	BookExists(ctx context.Context, bookID int64) (bool, error)

	// InsertLoan persists a new loan row and returns the store-assigned id.
	InsertLoan(ctx context.Context, userID, bookID int64) (int64, error)
}
