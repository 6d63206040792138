package messaging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestBackoffConfig_CalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Max: 5 * time.Second, Multiplier: 2}

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 4*time.Second, cfg.CalculateBackoff(2))
	assert.Equal(t, 5*time.Second, cfg.CalculateBackoff(3))
	assert.Equal(t, 5*time.Second, cfg.CalculateBackoff(10))
}

func TestProducer_PublishNarrationJob(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	p := NewProducer(rdb, 100, "")

	id, err := p.PublishNarrationJob(ctx, &NarrationJobMessage{JobID: "j1", UserID: "u1", StoryID: "s1", ChapterID: "c1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := rdb.XRange(ctx, string(StreamNarrationJobs), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	msg := decode(entries[0])
	require.NotNil(t, msg)
	assert.Equal(t, "j1", msg.ID)
	assert.Equal(t, MessageTypeNarration, msg.Type)
	assert.Equal(t, "u1", msg.UserID)

	var job NarrationJobMessage
	require.NoError(t, msg.UnmarshalPayload(&job))
	assert.Equal(t, "c1", job.ChapterID)
}

func TestConsumer_DeliversToHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rdb := newTestRedis(t)

	c := NewConsumer(rdb, ConsumerConfig{
		Stream:       StreamNarrationJobs,
		Group:        ConsumerGroupNarrationWorker,
		ConsumerName: "worker-1",
		BlockTimeout: 50 * time.Millisecond,
	})

	var got atomic.Value
	c.RegisterHandler(MessageTypeNarration, func(_ context.Context, msg *Message) error {
		var job NarrationJobMessage
		if err := msg.UnmarshalPayload(&job); err != nil {
			return err
		}
		got.Store(job.JobID)
		return nil
	})
	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	_, err := NewProducer(rdb, 100, "").PublishNarrationJob(ctx, &NarrationJobMessage{JobID: "j42", UserID: "u1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return got.Load() == "j42" }, 2*time.Second, 20*time.Millisecond)
}

func TestConsumer_StartTwice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rdb := newTestRedis(t)

	c := NewConsumer(rdb, ConsumerConfig{Stream: StreamNarrationJobs, Group: ConsumerGroupNarrationWorker, ConsumerName: "w", BlockTimeout: 20 * time.Millisecond})
	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	assert.Error(t, c.Start(ctx))
}

func TestConsumer_FailureToDLQ(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)

	var deadJob string
	c := NewConsumer(rdb, ConsumerConfig{
		Stream:       StreamNarrationJobs,
		Group:        ConsumerGroupNarrationWorker,
		ConsumerName: "w",
		RetryLimit:   1,
		OnDeadLetter: func(_ context.Context, msg *Message, _ error) { deadJob = msg.ID },
	})
	msg, err := NewMessage("j1", MessageTypeNarration, "u1", "s1", NarrationJobMessage{JobID: "j1"})
	require.NoError(t, err)

	c.moveToDLQ(ctx, msg, errors.New("tts failed"))

	n, err := rdb.XLen(ctx, StreamNarrationJobs.DLQStream()).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "j1", deadJob)
}
