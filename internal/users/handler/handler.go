package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"librisync/internal/users/models"
	"librisync/pkg/httputil"
	"librisync/pkg/sentinel"
)

// Service defines the interface for user reads.
type Service interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// Handler wires user endpoints to the users service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a users handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts user endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users/{id}", h.HandleGetUser)
}

// HandleGetUser handles GET /users/{id}.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "user id must be an integer")
		return
	}

	user, err := h.service.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.NotFound(w, "User not found")
			return
		}
		h.logger.ErrorContext(ctx, "get user failed", "user_id", userID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}
