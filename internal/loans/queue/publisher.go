// Package queue adapts the loan queue transport to the loan service's
// publishing needs.
package queue

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"librisync/internal/loans/models"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Transport is the producing surface of the message queue. The Kafka
// publisher in internal/platform/kafka satisfies it.
type Transport interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// LoanPublisher serializes loan events onto the loan topic.
type LoanPublisher struct {
	transport Transport
	topic     string
}

// NewLoanPublisher builds a publisher for the given loan topic.
func NewLoanPublisher(transport Transport, topic string) *LoanPublisher {
	return &LoanPublisher{transport: transport, topic: topic}
}

// PublishLoanEvent sends one loan event and waits for queue acknowledgment.
// Unlike audit logging this is not best-effort: a publish failure after a
// loan insert is surfaced to the caller as a failed request, since the loan
// record and availability state have diverged.
func (p *LoanPublisher) PublishLoanEvent(ctx context.Context, event models.LoanEvent) error {
	value, err := jsonCodec.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal loan event: %w", err)
	}
	if err := p.transport.Publish(ctx, p.topic, []byte(uuid.NewString()), value); err != nil {
		return fmt.Errorf("publish loan event: %w", err)
	}
	return nil
}
