package models

// Book is one catalog row. Available reflects the last successfully applied
// loan event for the book; it is eventually consistent with the loan records
// held by the Loans service, not immediately.
type Book struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Available bool   `json:"available"`
}
