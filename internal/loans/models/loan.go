package models

import "time"

// Loan is one loan record. Rows are write-once: a return does not mutate or
// delete the loan, it only publishes a loan event with free=true.
type Loan struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BookID    int64     `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LoanEvent is the loan queue wire message carrying an availability-mutation
// intent to the Books service. Free=false marks the book unavailable
// (checkout), free=true marks it available (return). The payload has no
// version field; producer and consumer must stay in lockstep.
type LoanEvent struct {
	BookID int64 `json:"book_id"`
	UserID int64 `json:"user_id"`
	Free   bool  `json:"free"`
}
