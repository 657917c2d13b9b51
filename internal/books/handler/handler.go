package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"librisync/internal/books/models"
	"librisync/pkg/httputil"
)

// Catalog is the read surface the handler needs.
type Catalog interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
}

// Handler serves the Books service's catalog endpoints.
type Handler struct {
	catalog Catalog
	logger  *slog.Logger
}

// New constructs a books handler.
func New(catalog Catalog, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

// Register mounts catalog endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/books", h.HandleListBooks)
}

// HandleListBooks handles GET /books.
func (h *Handler) HandleListBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	books, err := h.catalog.ListBooks(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list books failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	if books == nil {
		books = []models.Book{}
	}

	httputil.WriteJSON(w, http.StatusOK, books)
}
