package infra_redis_notifier

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/filmquorum/core/internal/model"
	"github.com/go-redis/redis"
)

// Driver publishes consensus events on a pub/sub channel and lets the
// API process subscribe to fan them out to connected clients.
type Driver struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

type Option func(*Driver)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

func New(client *redis.Client, channel string, opts ...Option) *Driver {
	d := &Driver{
		client:  client,
		channel: channel,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) Publish(_ context.Context, event model.ConsensusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return d.client.Publish(d.channel, string(payload)).Err()
}

// Subscribe delivers decoded consensus events to handle until ctx is
// cancelled. Payloads that fail to decode are logged and skipped.
func (d *Driver) Subscribe(ctx context.Context, handle func(model.ConsensusEvent)) error {
	sub := d.client.Subscribe(d.channel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event model.ConsensusEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				d.logger.Warn("skipping undecodable consensus event",
					slog.String("error", err.Error()))
				continue
			}
			handle(event)
		}
	}
}
