package infra_redis_notifier

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmquorum/core/internal/model"
)

func testDriver(t *testing.T) *Driver {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, "consensus:events")
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	driver := testDriver(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan model.ConsensusEvent, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = driver.Subscribe(ctx, func(event model.ConsensusEvent) {
			received <- event
		})
	}()

	// Give the subscriber a moment to attach before publishing.
	time.Sleep(100 * time.Millisecond)

	sent := model.ConsensusEvent{
		RoomID:      "room-1",
		ItemID:      42,
		ItemTitle:   "The Matrix",
		YesVotes:    3,
		MemberCount: 3,
		ReachedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, driver.Publish(ctx, sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.RoomID, got.RoomID)
		assert.Equal(t, sent.ItemID, got.ItemID)
		assert.Equal(t, sent.ItemTitle, got.ItemTitle)
		assert.Equal(t, sent.YesVotes, got.YesVotes)
		assert.True(t, sent.ReachedAt.Equal(got.ReachedAt))
	case <-time.After(5 * time.Second):
		t.Fatal("published event never delivered")
	}

	cancel()
	<-done
}

func TestSubscribeSkipsUndecodablePayloads(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	driver := New(client, "consensus:events")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan model.ConsensusEvent, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = driver.Subscribe(ctx, func(event model.ConsensusEvent) {
			received <- event
		})
	}()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, client.Publish("consensus:events", "not json").Err())
	require.NoError(t, driver.Publish(ctx, model.ConsensusEvent{RoomID: "room-1", ItemID: 7}))

	select {
	case got := <-received:
		assert.Equal(t, int64(7), got.ItemID, "the broken payload must be skipped, not fatal")
	case <-time.After(5 * time.Second):
		t.Fatal("valid event never delivered")
	}

	cancel()
	<-done
}
