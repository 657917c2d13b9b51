// Package service implements loan intake: validate, persist, publish.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"librisync/internal/audit"
	"librisync/internal/loans/metrics"
	"librisync/internal/loans/models"
	"librisync/internal/loans/store"
	"librisync/pkg/sentinel"
)

// Intake errors. Both wrap sentinel.ErrNotFound so the transport layer can
// map them with errors.Is while handlers still tell the two apart.
var (
	ErrUserNotFound = fmt.Errorf("user: %w", sentinel.ErrNotFound)
	ErrBookNotFound = fmt.Errorf("book: %w", sentinel.ErrNotFound)
)

// Publisher emits loan events to the loan queue.
type Publisher interface {
	PublishLoanEvent(ctx context.Context, event models.LoanEvent) error
}

// Service is the loan intake service. Existence checks and the loan insert
// are separate store calls with no lock between them; concurrent identical
// requests can both pass validation. Availability convergence is the Books
// consumer's job, not intake's.
type Service struct {
	store     store.Store
	publisher Publisher
	audit     audit.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// New constructs the intake service.
func New(st store.Store, publisher Publisher, auditPub audit.Publisher, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("loan store is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("loan event publisher is required")
	}
	return &Service{
		store:     st,
		publisher: publisher,
		audit:     auditPub,
		logger:    logger,
		metrics:   m,
	}, nil
}

// CreateLoan validates the request, persists a loan row, and publishes a
// checkout event. Side effect order: insert happens-before publish
// happens-before return. If the publish fails after the insert, the loan
// row and availability state diverge; that at-least-once gap is surfaced as
// an error rather than masked by retries here.
func (s *Service) CreateLoan(ctx context.Context, userID, bookID int64) (int64, error) {
	if err := s.checkExists(ctx, userID, bookID); err != nil {
		return 0, err
	}

	loanID, err := s.store.InsertLoan(ctx, userID, bookID)
	if err != nil {
		return 0, fmt.Errorf("create loan: %w", err)
	}

	audit.Info(ctx, s.audit, fmt.Sprintf("Loan created: user=%d, book=%d", userID, bookID))

	event := models.LoanEvent{BookID: bookID, UserID: userID, Free: false}
	if err := s.publisher.PublishLoanEvent(ctx, event); err != nil {
		// Loan row exists but no event reached the queue. Report the
		// failure; the caller retries, the apply side is idempotent.
		return 0, fmt.Errorf("loan %d created but event not published: %w", loanID, err)
	}

	s.metrics.LoanCreated()
	s.logger.InfoContext(ctx, "loan created",
		"loan_id", loanID,
		"user_id", userID,
		"book_id", bookID,
	)
	return loanID, nil
}

// FreeLoan validates the request and publishes a return event. The loan row
// is never touched: returns exist only as the event, the audit trail, and
// the eventual availability flip.
func (s *Service) FreeLoan(ctx context.Context, userID, bookID int64) error {
	if err := s.checkExists(ctx, userID, bookID); err != nil {
		return err
	}

	audit.Info(ctx, s.audit, fmt.Sprintf("Loan freed: user=%d, book=%d", userID, bookID))

	event := models.LoanEvent{BookID: bookID, UserID: userID, Free: true}
	if err := s.publisher.PublishLoanEvent(ctx, event); err != nil {
		return fmt.Errorf("publish return event: %w", err)
	}

	s.metrics.LoanFreed()
	s.logger.InfoContext(ctx, "loan freed",
		"user_id", userID,
		"book_id", bookID,
	)
	return nil
}

// checkExists runs the two independent point lookups, user first. A miss on
// either aborts intake before any write or publish.
func (s *Service) checkExists(ctx context.Context, userID, bookID int64) error {
	ok, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if !ok {
		s.metrics.IntakeRejected()
		return ErrUserNotFound
	}

	ok, err = s.store.BookExists(ctx, bookID)
	if err != nil {
		return fmt.Errorf("check book %d: %w", bookID, err)
	}
	if !ok {
		s.metrics.IntakeRejected()
		return ErrBookNotFound
	}
	return nil
}
