package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"librisync/internal/audit"
	"librisync/internal/books/metrics"
	"librisync/internal/books/models"
	"librisync/internal/books/store"
	"librisync/internal/platform/kafka"
	"librisync/internal/platform/logger"
)

type ConsumerSuite struct {
	suite.Suite
	store   *store.MemoryStore
	audit   *audit.Recorder
	handler *Handler
}

func TestConsumerSuite(t *testing.T) {
	suite.Run(t, new(ConsumerSuite))
}

func (s *ConsumerSuite) SetupTest() {
	s.store = store.NewMemory(
		models.Book{ID: 2, Title: "The Go Programming Language", Available: true},
	)
	s.audit = audit.NewRecorder()
	s.handler = New(s.store, s.audit, logger.New("test"), metrics.New())
}

func msg(body string) *kafka.Message {
	return &kafka.Message{Topic: "loan-events", Value: []byte(body)}
}

func (s *ConsumerSuite) TestCheckoutMarksUnavailable() {
	err := s.handler.Handle(context.Background(), msg(`{"book_id":2,"user_id":1,"free":false}`))
	s.Require().NoError(err)

	book, ok := s.store.Book(2)
	s.Require().True(ok)
	s.False(book.Available)

	events := s.audit.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.LevelInfo, events[0].Level)
	s.Contains(events[0].Message, "Book loaned")
}

func (s *ConsumerSuite) TestReturnMarksAvailable() {
	s.Require().NoError(s.store.SetAvailability(context.Background(), 2, false))

	err := s.handler.Handle(context.Background(), msg(`{"book_id":2,"user_id":1,"free":true}`))
	s.Require().NoError(err)

	book, _ := s.store.Book(2)
	s.True(book.Available)
}

func (s *ConsumerSuite) TestApplyIsIdempotent() {
	body := `{"book_id":2,"user_id":1,"free":false}`

	s.Require().NoError(s.handler.Handle(context.Background(), msg(body)))
	first, _ := s.store.Book(2)

	s.Require().NoError(s.handler.Handle(context.Background(), msg(body)))
	second, _ := s.store.Book(2)

	s.Equal(first, second, "redelivered event must not change state")
}

func (s *ConsumerSuite) TestUnknownBookIsIgnored() {
	err := s.handler.Handle(context.Background(), msg(`{"book_id":999,"user_id":1,"free":false}`))
	s.Require().NoError(err, "zero-row update is not an error")

	events := s.audit.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.LevelInfo, events[0].Level)
}

func (s *ConsumerSuite) TestMalformedBodyIsNotAcknowledged() {
	err := s.handler.Handle(context.Background(), msg(`not-json`))
	s.Require().Error(err, "parse failures leave the message unacknowledged")

	book, _ := s.store.Book(2)
	s.True(book.Available, "no mutation on parse failure")

	events := s.audit.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.LevelError, events[0].Level)
	s.Contains(events[0].Message, "Error processing transaction")
}

type failingStore struct{}

func (failingStore) SetAvailability(context.Context, int64, bool) error {
	return errors.New("connection refused")
}

func (s *ConsumerSuite) TestStoreFailurePropagates() {
	h := New(failingStore{}, s.audit, logger.New("test"), metrics.New())

	err := h.Handle(context.Background(), msg(`{"book_id":2,"user_id":1,"free":false}`))
	s.Require().Error(err)

	events := s.audit.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.LevelError, events[0].Level)
}
