package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Queue is the transport surface the publisher needs. The Kafka publisher in
// internal/platform/kafka satisfies it.
type Queue interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// QueuePublisher pushes audit events to the log queue. Synchronous by
// default, which keeps tests deterministic; production wiring enables an
// async buffer so log emission is decoupled from request latency.
type QueuePublisher struct {
	queue  Queue
	topic  string
	logger *slog.Logger

	inbox chan Event
	wg    sync.WaitGroup
	once  sync.Once

	mu     sync.RWMutex
	closed bool
}

// Option configures a QueuePublisher.
type Option func(*QueuePublisher)

// WithAsyncBuffer enables asynchronous emission through a buffered channel.
// When the buffer is full the event is dropped rather than blocking the
// caller.
func WithAsyncBuffer(size int) Option {
	return func(p *QueuePublisher) {
		p.inbox = make(chan Event, size)
	}
}

// NewQueuePublisher builds a publisher for the given log topic.
func NewQueuePublisher(queue Queue, topic string, logger *slog.Logger, opts ...Option) *QueuePublisher {
	p := &QueuePublisher{
		queue:  queue,
		topic:  topic,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit publishes the event. Failures are logged and swallowed; audit
// emission never fails the operation that produced the event.
func (p *QueuePublisher) Emit(ctx context.Context, event Event) {
	if p.inbox == nil {
		p.publish(ctx, event)
		return
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("audit publisher closed, dropping event", "level", event.Level)
		return
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event", "level", event.Level)
	}
}

func (p *QueuePublisher) drain() {
	defer p.wg.Done()
	// Detached from request contexts: buffered events outlive the request
	// that emitted them.
	ctx := context.Background()
	for event := range p.inbox {
		p.publish(ctx, event)
	}
}

func (p *QueuePublisher) publish(ctx context.Context, event Event) {
	value, err := jsonCodec.Marshal(event)
	if err != nil {
		p.logger.Error("marshal audit event", "error", err)
		return
	}
	key := []byte(uuid.NewString())
	if err := p.queue.Publish(ctx, p.topic, key, value); err != nil {
		p.logger.Error("publish audit event", "error", err)
	}
}

// Close drains buffered events and stops the background worker. Safe to call
// in synchronous mode and safe to call twice; events emitted after Close are
// dropped.
func (p *QueuePublisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			p.mu.Lock()
			p.closed = true
			close(p.inbox)
			p.mu.Unlock()
		}
	})
	p.wg.Wait()
}
