// Package consumer applies loan events from the loan queue to book
// availability. It is the receiving half of the cross-service protocol: the
// Loans service decides, this consumer durably applies.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"librisync/internal/audit"
	"librisync/internal/books/metrics"
	"librisync/internal/platform/kafka"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Store is the slice of the book store the consumer needs.
type Store interface {
	SetAvailability(ctx context.Context, bookID int64, available bool) error
}

// loanEvent mirrors the loan queue wire format. The producer lives in the
// Loans service; both sides must stay in lockstep since the payload carries
// no version field.
type loanEvent struct {
	BookID int64 `json:"book_id"`
	UserID int64 `json:"user_id"`
	Free   bool  `json:"free"`
}

// Handler processes loan events one at a time. Returning an error leaves the
// message unacknowledged so the queue redelivers it; the availability update
// is idempotent, so redelivery after a crash between apply and acknowledge
// is harmless.
type Handler struct {
	store   Store
	audit   audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs a loan event handler.
func New(store Store, auditPub audit.Publisher, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		store:   store,
		audit:   auditPub,
		logger:  logger,
		metrics: m,
	}
}

// Handle runs one message through the parse/apply/acknowledge sequence.
func (h *Handler) Handle(ctx context.Context, msg *kafka.Message) error {
	var event loanEvent
	if err := jsonCodec.Unmarshal(msg.Value, &event); err != nil {
		h.metrics.EventFailed()
		audit.Error(ctx, h.audit, fmt.Sprintf("Error processing transaction: %v", err))
		return fmt.Errorf("parse loan event: %w", err)
	}

	// free=true marks the book available (return); free=false marks it
	// unavailable (checkout). Unknown book ids fall through silently.
	if err := h.store.SetAvailability(ctx, event.BookID, event.Free); err != nil {
		h.metrics.EventFailed()
		audit.Error(ctx, h.audit, fmt.Sprintf("Error processing transaction: %v", err))
		return fmt.Errorf("apply loan event: %w", err)
	}

	h.metrics.EventApplied()
	if event.Free {
		audit.Info(ctx, h.audit, fmt.Sprintf("Book returned: %d", event.BookID))
	} else {
		audit.Info(ctx, h.audit, fmt.Sprintf("Book loaned: %d", event.BookID))
	}
	h.logger.InfoContext(ctx, "loan event applied",
		"book_id", event.BookID,
		"user_id", event.UserID,
		"available", event.Free,
	)
	return nil
}
