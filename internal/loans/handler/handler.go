package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"librisync/internal/loans/service"
	"librisync/pkg/httputil"
)

// Service defines the interface for loan intake operations.
type Service interface {
	CreateLoan(ctx context.Context, userID, bookID int64) (int64, error)
	FreeLoan(ctx context.Context, userID, bookID int64) error
}

// Handler wires loan endpoints to the intake service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a loans handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts loan endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/loans", h.HandleCreateLoan)
	r.Post("/loans/free", h.HandleFreeLoan)
}

type loanRequest struct {
	UserID int64 `json:"user_id"`
	BookID int64 `json:"book_id"`
}

type createLoanResponse struct {
	LoanID int64  `json:"loan_id"`
	Status string `json:"status"`
}

type freeLoanResponse struct {
	Status string `json:"status"`
}

// HandleCreateLoan handles POST /loans.
func (h *Handler) HandleCreateLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[loanRequest](w, r)
	if !ok {
		return
	}
	if req.UserID == 0 || req.BookID == 0 {
		httputil.BadRequest(w, "user_id and book_id are required")
		return
	}

	loanID, err := h.service.CreateLoan(ctx, req.UserID, req.BookID)
	if err != nil {
		h.writeIntakeError(ctx, w, err, req)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, createLoanResponse{LoanID: loanID, Status: "completed"})
}

// HandleFreeLoan handles POST /loans/free.
func (h *Handler) HandleFreeLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[loanRequest](w, r)
	if !ok {
		return
	}
	if req.UserID == 0 || req.BookID == 0 {
		httputil.BadRequest(w, "user_id and book_id are required")
		return
	}

	if err := h.service.FreeLoan(ctx, req.UserID, req.BookID); err != nil {
		h.writeIntakeError(ctx, w, err, req)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, freeLoanResponse{Status: "ok"})
}

func (h *Handler) writeIntakeError(ctx context.Context, w http.ResponseWriter, err error, req loanRequest) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		httputil.NotFound(w, "User not found")
	case errors.Is(err, service.ErrBookNotFound):
		httputil.NotFound(w, "Book not found")
	default:
		h.logger.ErrorContext(ctx, "loan intake failed",
			"user_id", req.UserID,
			"book_id", req.BookID,
			"error", err,
		)
		httputil.WriteError(w, err)
	}
}
