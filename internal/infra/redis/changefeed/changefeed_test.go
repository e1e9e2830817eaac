package infra_redis_changefeed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmquorum/core/internal/config"
	"github.com/filmquorum/core/internal/model"
)

func testDriver(t *testing.T) (*Driver, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.Changefeed{
		Stream:   "votes:changes",
		Group:    "consensus-watchers",
		Consumer: "test-consumer",
	}
	return New(client, cfg), client
}

func TestEmitWritesCompositeKeys(t *testing.T) {
	driver, client := testDriver(t)

	err := driver.Emit(context.Background(), model.VoteChange{
		RoomID:   "room-1",
		ItemID:   42,
		Kind:     model.ChangeInsert,
		YesVotes: 1,
	})
	require.NoError(t, err)

	entries, err := client.XRange("votes:changes", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "ROOM#room-1", entries[0].Values["pk"])
	assert.Equal(t, "ITEM_VOTES#42", entries[0].Values["sk"])
	assert.Equal(t, "INSERT", entries[0].Values["kind"])
	assert.Equal(t, "1", entries[0].Values["yes_votes"])
}

func TestConsumeDeliversEmittedChanges(t *testing.T) {
	driver, _ := testDriver(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, driver.Emit(ctx, model.VoteChange{
		RoomID: "room-1", ItemID: 42, Kind: model.ChangeInsert, YesVotes: 1,
	}))
	require.NoError(t, driver.Emit(ctx, model.VoteChange{
		RoomID: "room-1", ItemID: 42, Kind: model.ChangeModify, YesVotes: 2,
	}))

	handled := make(chan model.VoteChange, 2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = driver.Consume(ctx, func(_ context.Context, change model.VoteChange) error {
			handled <- change
			return nil
		})
	}()

	var first, second model.VoteChange
	select {
	case first = <-handled:
	case <-time.After(5 * time.Second):
		t.Fatal("first change never delivered")
	}
	select {
	case second = <-handled:
	case <-time.After(5 * time.Second):
		t.Fatal("second change never delivered")
	}

	cancel()
	<-done

	assert.Equal(t, model.RoomID("room-1"), first.RoomID)
	assert.Equal(t, int64(42), first.ItemID)
	assert.Equal(t, 1, first.YesVotes)
	assert.Equal(t, model.ChangeInsert, first.Kind)
	assert.Equal(t, 2, second.YesVotes)
	assert.Equal(t, model.ChangeModify, second.Kind)
}

func TestConsumeRetriesFailedHandler(t *testing.T) {
	driver, client := testDriver(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, driver.Emit(ctx, model.VoteChange{
		RoomID: "room-1", ItemID: 42, Kind: model.ChangeModify, YesVotes: 3,
	}))

	var calls int32
	handled := make(chan model.VoteChange, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = driver.Consume(ctx, func(_ context.Context, change model.VoteChange) error {
			if atomic.AddInt32(&calls, 1) == 1 {
				return errors.New("transient storage failure")
			}
			handled <- change
			return nil
		})
	}()

	var change model.VoteChange
	select {
	case change = <-handled:
	case <-time.After(5 * time.Second):
		t.Fatal("failed entry was never redelivered")
	}

	cancel()
	<-done

	assert.Equal(t, 3, change.YesVotes)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2), "first delivery fails, second succeeds")

	pending, err := client.XPending("votes:changes", "consensus-watchers").Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count, "retried entry must end up acked")
}

func TestConsumeDropsMalformedEntries(t *testing.T) {
	driver, client := testDriver(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := client.XAdd(&redis.XAddArgs{
		Stream: "votes:changes",
		Values: map[string]interface{}{"pk": "garbage", "sk": "also-garbage"},
	}).Result()
	require.NoError(t, err)
	require.NoError(t, driver.Emit(ctx, model.VoteChange{
		RoomID: "room-1", ItemID: 7, Kind: model.ChangeInsert, YesVotes: 1,
	}))

	handled := make(chan model.VoteChange, 2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = driver.Consume(ctx, func(_ context.Context, change model.VoteChange) error {
			handled <- change
			return nil
		})
	}()

	select {
	case change := <-handled:
		assert.Equal(t, int64(7), change.ItemID, "only the well-formed entry reaches the handler")
	case <-time.After(5 * time.Second):
		t.Fatal("well-formed change never delivered")
	}

	cancel()
	<-done

	select {
	case change := <-handled:
		t.Fatalf("malformed entry was handled: %+v", change)
	default:
	}
}

func TestParseEntry(t *testing.T) {
	testCases := []struct {
		name   string
		values map[string]interface{}
		ok     bool
	}{
		{
			name: "well-formed",
			values: map[string]interface{}{
				"pk": "ROOM#r1", "sk": "ITEM_VOTES#5", "kind": "MODIFY", "yes_votes": "3",
			},
			ok: true,
		},
		{
			name:   "missing pk prefix",
			values: map[string]interface{}{"pk": "r1", "sk": "ITEM_VOTES#5", "yes_votes": "3"},
		},
		{
			name:   "non-numeric item id",
			values: map[string]interface{}{"pk": "ROOM#r1", "sk": "ITEM_VOTES#abc", "yes_votes": "3"},
		},
		{
			name:   "missing yes_votes",
			values: map[string]interface{}{"pk": "ROOM#r1", "sk": "ITEM_VOTES#5"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			change, err := parseEntry(redis.XMessage{ID: "1-1", Values: tc.values})
			if !tc.ok {
				assert.ErrorIs(t, err, ErrMalformedEntry)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.RoomID("r1"), change.RoomID)
			assert.Equal(t, int64(5), change.ItemID)
			assert.Equal(t, model.ChangeModify, change.Kind)
			assert.Equal(t, 3, change.YesVotes)
		})
	}
}
