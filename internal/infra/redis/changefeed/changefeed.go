package infra_redis_changefeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/filmquorum/core/internal/config"
	"github.com/filmquorum/core/internal/model"
	"github.com/go-redis/redis"
)

var (
	ErrMalformedEntry = errors.New("malformed changefeed entry")
)

const (
	roomKeyPrefix = "ROOM#"
	itemKeyPrefix = "ITEM_VOTES#"

	readBlock = 5 * time.Second
	readCount = 16
)

// Handler processes one vote-change notification. A nil return acks the
// entry; an error leaves it pending for redelivery.
type Handler func(ctx context.Context, change model.VoteChange) error

// Driver is both ends of the vote-change feed: the vote usecase emits
// onto a Redis stream, the consensus watcher consumes it through a
// consumer group. The group gives at-least-once delivery; ordering and
// duplication are the handler's problem.
type Driver struct {
	client *redis.Client
	cfg    config.Changefeed
	logger *slog.Logger
}

type Option func(*Driver)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

func New(client *redis.Client, cfg config.Changefeed, opts ...Option) *Driver {
	d := &Driver{
		client: client,
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) Emit(_ context.Context, change model.VoteChange) error {
	return d.client.XAdd(&redis.XAddArgs{
		Stream: d.cfg.Stream,
		Values: map[string]interface{}{
			"pk":        roomKeyPrefix + string(change.RoomID),
			"sk":        itemKeyPrefix + strconv.FormatInt(change.ItemID, 10),
			"kind":      string(change.Kind),
			"yes_votes": change.YesVotes,
		},
	}).Err()
}

// Consume reads the stream through the consumer group until ctx is
// cancelled. Entries are acked after the handler returns nil; handler
// errors leave the entry in the group's pending list, and every cycle
// re-reads that list before blocking for new entries, so a failed
// entry is retried on the next pass. Malformed entries are acked and
// dropped, replaying them can never succeed.
func (d *Driver) Consume(ctx context.Context, handle Handler) error {
	if err := d.ensureGroup(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Unacked deliveries first (handler errors, a crash before
		// ack); only reading ">" would strand them forever.
		if err := d.readBatch(ctx, "0", handle); err != nil {
			if err := d.cooldown(ctx, err); err != nil {
				return err
			}
			continue
		}
		if err := d.readBatch(ctx, ">", handle); err != nil {
			if err := d.cooldown(ctx, err); err != nil {
				return err
			}
		}
	}
}

// readBatch performs one XREADGROUP pass. Cursor ">" blocks for new
// entries; cursor "0" returns this consumer's pending entries and
// never blocks.
func (d *Driver) readBatch(ctx context.Context, cursor string, handle Handler) error {
	args := &redis.XReadGroupArgs{
		Group:    d.cfg.Group,
		Consumer: d.cfg.Consumer,
		Streams:  []string{d.cfg.Stream, cursor},
		Count:    readCount,
		Block:    -1,
	}
	if cursor == ">" {
		args.Block = readBlock
	}

	streams, err := d.client.XReadGroup(args).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	for _, stream := range streams {
		for _, entry := range stream.Messages {
			d.process(ctx, entry, handle)
		}
	}
	return nil
}

func (d *Driver) cooldown(ctx context.Context, cause error) error {
	d.logger.Error("changefeed read failed", slog.String("error", cause.Error()))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
		return nil
	}
}

func (d *Driver) process(ctx context.Context, entry redis.XMessage, handle Handler) {
	change, err := parseEntry(entry)
	if err != nil {
		d.logger.Warn("dropping malformed changefeed entry",
			slog.String("entry_id", entry.ID),
			slog.String("error", err.Error()))
		d.ack(entry.ID)
		return
	}

	if err := handle(ctx, change); err != nil {
		d.logger.Error("changefeed handler failed",
			slog.String("entry_id", entry.ID),
			slog.String("room_id", string(change.RoomID)),
			slog.String("error", err.Error()))
		return
	}

	d.ack(entry.ID)
}

func (d *Driver) ack(entryID string) {
	if err := d.client.XAck(d.cfg.Stream, d.cfg.Group, entryID).Err(); err != nil {
		d.logger.Error("changefeed ack failed",
			slog.String("entry_id", entryID),
			slog.String("error", err.Error()))
	}
}

func (d *Driver) ensureGroup() error {
	err := d.client.XGroupCreateMkStream(d.cfg.Stream, d.cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func parseEntry(entry redis.XMessage) (model.VoteChange, error) {
	pk, ok := entry.Values["pk"].(string)
	if !ok || !strings.HasPrefix(pk, roomKeyPrefix) {
		return model.VoteChange{}, fmt.Errorf("%w: bad pk %v", ErrMalformedEntry, entry.Values["pk"])
	}
	sk, ok := entry.Values["sk"].(string)
	if !ok || !strings.HasPrefix(sk, itemKeyPrefix) {
		return model.VoteChange{}, fmt.Errorf("%w: bad sk %v", ErrMalformedEntry, entry.Values["sk"])
	}

	itemID, err := strconv.ParseInt(strings.TrimPrefix(sk, itemKeyPrefix), 10, 64)
	if err != nil {
		return model.VoteChange{}, fmt.Errorf("%w: bad item id in sk %q", ErrMalformedEntry, sk)
	}

	rawVotes, ok := entry.Values["yes_votes"].(string)
	if !ok {
		return model.VoteChange{}, fmt.Errorf("%w: missing yes_votes", ErrMalformedEntry)
	}
	yesVotes, err := strconv.Atoi(rawVotes)
	if err != nil {
		return model.VoteChange{}, fmt.Errorf("%w: bad yes_votes %q", ErrMalformedEntry, rawVotes)
	}

	kind, _ := entry.Values["kind"].(string)

	return model.VoteChange{
		RoomID:   model.RoomID(strings.TrimPrefix(pk, roomKeyPrefix)),
		ItemID:   itemID,
		Kind:     model.ChangeKind(kind),
		YesVotes: yesVotes,
	}, nil
}
