package models

// User is one identity row. Email is PII: encrypted at rest and in the
// cache, decrypted only in memory for the response.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
