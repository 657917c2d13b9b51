package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"librisync/internal/platform/logger"
)

type handlerFunc func(ctx context.Context, msg *Message) error

func (f handlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// fakeOffsets records commits and rewinds instead of talking to a broker.
type fakeOffsets struct {
	committed []int64
	rewinds   []map[string]map[int32]kgo.EpochOffset
}

func (f *fakeOffsets) CommitRecords(_ context.Context, records ...*kgo.Record) error {
	for _, rec := range records {
		f.committed = append(f.committed, rec.Offset)
	}
	return nil
}

func (f *fakeOffsets) SetOffsets(offsets map[string]map[int32]kgo.EpochOffset) {
	f.rewinds = append(f.rewinds, offsets)
}

func newTestConsumer(h Handler, offsets offsetManager, onDiscard func(ctx context.Context, msg *Message, err error)) *Consumer {
	return &Consumer{
		offsets:       offsets,
		handler:       h,
		logger:        logger.New("test"),
		maxDeliveries: defaultMaxDeliveries,
		onDiscard:     onDiscard,
		deliveries:    make(map[string]int),
	}
}

func loanRecord(partition int32, offset int64) *kgo.Record {
	return &kgo.Record{
		Topic:     "loan-events",
		Partition: partition,
		Offset:    offset,
		Value:     []byte(`not json`),
	}
}

func TestProcessSuccessCommits(t *testing.T) {
	offsets := &fakeOffsets{}
	c := newTestConsumer(handlerFunc(func(context.Context, *Message) error {
		return nil
	}), offsets, nil)

	rewound := c.process(context.Background(), loanRecord(0, 3))

	assert.False(t, rewound)
	assert.Equal(t, []int64{3}, offsets.committed)
	assert.Empty(t, offsets.rewinds)
	assert.Empty(t, c.deliveries, "acknowledged offsets keep no attempt counter")
}

func TestProcessRewindsFailedDeliveriesUntilBound(t *testing.T) {
	offsets := &fakeOffsets{}
	var discarded []*Message
	c := newTestConsumer(handlerFunc(func(context.Context, *Message) error {
		return errors.New("bad payload")
	}), offsets, func(_ context.Context, msg *Message, err error) {
		require.Error(t, err)
		discarded = append(discarded, msg)
	})

	rec := loanRecord(0, 7)

	// Deliveries 1 through 4 rewind the partition for another attempt.
	for attempt := 1; attempt < defaultMaxDeliveries; attempt++ {
		rewound := c.process(context.Background(), rec)
		assert.True(t, rewound, "delivery %d should rewind", attempt)
		assert.Empty(t, offsets.committed)
		assert.Empty(t, discarded)
	}
	require.Len(t, offsets.rewinds, defaultMaxDeliveries-1)
	assert.Equal(t, int64(7), offsets.rewinds[0]["loan-events"][0].Offset)

	// The final delivery acknowledges and drops the message.
	rewound := c.process(context.Background(), rec)
	assert.False(t, rewound)
	assert.Equal(t, []int64{7}, offsets.committed)
	require.Len(t, discarded, 1)
	assert.Equal(t, int64(7), discarded[0].Offset)
	assert.Empty(t, c.deliveries, "dropped offsets keep no attempt counter")
}

func TestProcessFetchFailureSkipsOnlyOwnPartition(t *testing.T) {
	offsets := &fakeOffsets{}
	var handled []*Message
	c := newTestConsumer(handlerFunc(func(_ context.Context, msg *Message) error {
		handled = append(handled, msg)
		if msg.Partition == 0 {
			return errors.New("bad payload")
		}
		return nil
	}), offsets, nil)

	fetches := kgo.Fetches{{
		Topics: []kgo.FetchTopic{{
			Topic: "loan-events",
			Partitions: []kgo.FetchPartition{
				{Partition: 0, Records: []*kgo.Record{loanRecord(0, 10), loanRecord(0, 11)}},
				{Partition: 1, Records: []*kgo.Record{loanRecord(1, 4)}},
			},
		}},
	}}

	c.processFetch(context.Background(), fetches)

	// Partition 0 stops at its failed record; partition 1 is unaffected.
	require.Len(t, handled, 2)
	assert.Equal(t, int64(10), handled[0].Offset)
	assert.Equal(t, int32(1), handled[1].Partition)
	assert.Equal(t, []int64{4}, offsets.committed)
	require.Len(t, offsets.rewinds, 1)
	assert.Equal(t, int64(10), offsets.rewinds[0]["loan-events"][0].Offset)
}
