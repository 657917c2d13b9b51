package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is one received queue message, decoupled from the transport record
// type so handlers stay testable without a broker.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Partition int32
	Offset    int64
}

// Handler processes a single message. A nil return acknowledges the message;
// an error leaves it unacknowledged so the queue redelivers it.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// ConsumerConfig configures a single-topic consumer loop.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	Group   string

	// MaxDeliveries bounds redelivery of a message that keeps failing.
	// Past the bound the message is acknowledged and dropped so one poison
	// message cannot block the queue forever.
	MaxDeliveries int

	// OnDiscard, if set, is called once per message dropped at the delivery
	// bound, after the final failed attempt.
	OnDiscard func(ctx context.Context, msg *Message, err error)
}

const defaultMaxDeliveries = 5

// offsetManager is the slice of the Kafka client the delivery accounting
// needs: acknowledging a record and rewinding a partition.
type offsetManager interface {
	CommitRecords(ctx context.Context, records ...*kgo.Record) error
	SetOffsets(offsets map[string]map[int32]kgo.EpochOffset)
}

// Consumer is a long-lived receiver loop over one queue subscription.
// Messages are processed one at a time in receive order per partition and
// acknowledged only after processing, so a crash mid-message causes
// redelivery.
type Consumer struct {
	client        *kgo.Client
	offsets       offsetManager
	handler       Handler
	logger        *slog.Logger
	maxDeliveries int
	onDiscard     func(ctx context.Context, msg *Message, err error)

	// deliveries counts processing attempts per in-flight offset. Entries
	// are dropped as soon as the offset is acknowledged.
	deliveries map[string]int
}

// NewConsumer connects a consumer-group member subscribed to cfg.Topic.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumerGroup(cfg.Group),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	maxDeliveries := cfg.MaxDeliveries
	if maxDeliveries <= 0 {
		maxDeliveries = defaultMaxDeliveries
	}

	return &Consumer{
		client:        client,
		offsets:       client,
		handler:       handler,
		logger:        logger,
		maxDeliveries: maxDeliveries,
		onDiscard:     cfg.OnDiscard,
		deliveries:    make(map[string]int),
	}, nil
}

// Run polls until ctx is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		c.processFetch(ctx, fetches)
	}
}

// processFetch walks each fetched partition in order. A failed record rewinds
// its own partition and skips the rest of that partition's batch; records
// from other partitions in the same fetch still get processed.
func (c *Consumer) processFetch(ctx context.Context, fetches kgo.Fetches) {
	fetches.EachPartition(func(p kgo.FetchTopicPartition) {
		for _, rec := range p.Records {
			if rewound := c.process(ctx, rec); rewound {
				break
			}
		}
	})
}

// process handles one record. It reports whether the partition was rewound
// to retry the record.
func (c *Consumer) process(ctx context.Context, rec *kgo.Record) bool {
	msg := &Message{
		Topic:     rec.Topic,
		Key:       rec.Key,
		Value:     rec.Value,
		Partition: rec.Partition,
		Offset:    rec.Offset,
	}
	key := fmt.Sprintf("%s/%d/%d", rec.Topic, rec.Partition, rec.Offset)
	c.deliveries[key]++

	err := c.handler.Handle(ctx, msg)
	if err == nil {
		c.acknowledge(ctx, rec)
		delete(c.deliveries, key)
		return false
	}

	if c.deliveries[key] >= c.maxDeliveries {
		c.logger.ErrorContext(ctx, "dropping message after repeated failures",
			"topic", rec.Topic,
			"partition", rec.Partition,
			"offset", rec.Offset,
			"attempts", c.deliveries[key],
			"error", err,
		)
		c.acknowledge(ctx, rec)
		delete(c.deliveries, key)
		if c.onDiscard != nil {
			c.onDiscard(ctx, msg, err)
		}
		return false
	}

	c.logger.WarnContext(ctx, "message processing failed, leaving unacknowledged",
		"topic", rec.Topic,
		"partition", rec.Partition,
		"offset", rec.Offset,
		"attempt", c.deliveries[key],
		"error", err,
	)
	c.offsets.SetOffsets(map[string]map[int32]kgo.EpochOffset{
		rec.Topic: {rec.Partition: {Epoch: rec.LeaderEpoch, Offset: rec.Offset}},
	})
	return true
}

func (c *Consumer) acknowledge(ctx context.Context, rec *kgo.Record) {
	if err := c.offsets.CommitRecords(ctx, rec); err != nil {
		// Redelivery of an already-applied message is tolerated; the apply
		// step is idempotent.
		c.logger.ErrorContext(ctx, "commit failed",
			"topic", rec.Topic,
			"offset", rec.Offset,
			"error", err,
		)
	}
}

// Close leaves the consumer group and releases the client.
func (c *Consumer) Close() {
	c.client.Close()
}
