package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"librisync/pkg/sentinel"
)

// WriteJSON serializes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody mirrors the upstream services' error contract.
type errorBody struct {
	Detail string `json:"detail"`
}

// WriteError maps sentinel errors onto HTTP status codes. Unknown errors
// become 500 with a generic detail so internals never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, errorBody{Detail: "not found"})
	case errors.Is(err, sentinel.ErrUnavailable):
		WriteJSON(w, http.StatusServiceUnavailable, errorBody{Detail: "service unavailable"})
	default:
		WriteJSON(w, http.StatusInternalServerError, errorBody{Detail: "internal error"})
	}
}

// NotFound writes a 404 with an explicit detail message, matching the
// "User not found" / "Book not found" contract of the services.
func NotFound(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusNotFound, errorBody{Detail: detail})
}

// BadRequest writes a 400 for malformed request bodies.
func BadRequest(w http.ResponseWriter, detail string) {
	WriteJSON(w, http.StatusBadRequest, errorBody{Detail: detail})
}

// Decode reads a JSON request body into T, reporting a 400 on failure.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return req, false
	}
	return req, true
}
