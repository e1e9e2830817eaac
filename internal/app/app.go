package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/filmquorum/core/internal/config"
	http_deck "github.com/filmquorum/core/internal/delivery/http/deck"
	http_init "github.com/filmquorum/core/internal/delivery/http/init"
	http_room "github.com/filmquorum/core/internal/delivery/http/room"
	http_swagger "github.com/filmquorum/core/internal/delivery/http/swagger"
	http_vote "github.com/filmquorum/core/internal/delivery/http/vote"
	ws_room "github.com/filmquorum/core/internal/delivery/ws/room"
	infra_catalog "github.com/filmquorum/core/internal/infra/catalog"
	infra_pg_init "github.com/filmquorum/core/internal/infra/postgres/init"
	infra_postgres_room "github.com/filmquorum/core/internal/infra/postgres/room"
	infra_postgres_roomcache "github.com/filmquorum/core/internal/infra/postgres/roomcache"
	infra_postgres_vote "github.com/filmquorum/core/internal/infra/postgres/vote"
	infra_redis_changefeed "github.com/filmquorum/core/internal/infra/redis/changefeed"
	infra_redis_init "github.com/filmquorum/core/internal/infra/redis/init"
	infra_redis_notifier "github.com/filmquorum/core/internal/infra/redis/notifier"
	"github.com/filmquorum/core/internal/model"
	"github.com/filmquorum/core/internal/service/qualitygate"
	"github.com/filmquorum/core/internal/service/sampler"
	usecase_consensus "github.com/filmquorum/core/internal/usecase/consensus"
	usecase_curation "github.com/filmquorum/core/internal/usecase/curation"
	usecase_deck "github.com/filmquorum/core/internal/usecase/deck"
	usecase_room "github.com/filmquorum/core/internal/usecase/room"
	usecase_vote "github.com/filmquorum/core/internal/usecase/vote"
)

// Go wires and runs the API process: room lifecycle, deck curation and
// delivery, vote intake, plus the websocket fan-out of consensus events
// published by the watcher.
func Go(cfg *config.Config) {
	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)

	roomRepository := infra_postgres_room.New(pgConn)
	cacheRepository := infra_postgres_roomcache.New(pgConn)
	voteRepository := infra_postgres_vote.New(pgConn)
	changefeed := infra_redis_changefeed.New(redisConn, cfg.Changefeed)
	notifier := infra_redis_notifier.New(redisConn, cfg.Changefeed.Channel)

	catalog := infra_catalog.New(cfg.Catalog)
	gate := qualitygate.New(cfg.Catalog.Languages)

	roomUC := usecase_room.New(roomRepository)
	curationUC := usecase_curation.New(catalog, gate, sampler.New(), cacheRepository, usecase_curation.Config{
		SetSize:     cfg.Curation.SetSize,
		FetchFactor: cfg.Curation.FetchFactor,
		Retention:   cfg.Curation.Retention,
	})
	deckUC := usecase_deck.New(cacheRepository, cfg.Curation.LowCardWindow)
	voteUC := usecase_vote.New(voteRepository, roomRepository, changefeed)

	hub := ws_room.New(slog.Default())
	go func() {
		if err := notifier.Subscribe(context.Background(), hub.BroadcastConsensus); err != nil {
			slog.Error("consensus subscription stopped", slog.String("error", err.Error()))
		}
	}()

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_swagger.New())
	controllerPool.Add(http_room.New(roomUC))
	controllerPool.Add(http_deck.New(curationUC, deckUC))
	controllerPool.Add(http_vote.New(voteUC))
	controllerPool.Add(hub)

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}

// GoWatcher wires and runs the consensus watcher process: it consumes
// the vote changefeed and performs each room's single consensus
// transition. Blocks until ctx is cancelled.
func GoWatcher(ctx context.Context, cfg *config.Config) error {
	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)

	roomRepository := infra_postgres_room.New(pgConn)
	cacheRepository := infra_postgres_roomcache.New(pgConn)
	voteRepository := infra_postgres_vote.New(pgConn)
	changefeed := infra_redis_changefeed.New(redisConn, cfg.Changefeed)
	notifier := infra_redis_notifier.New(redisConn, cfg.Changefeed.Channel)

	watcher := usecase_consensus.New(roomRepository, voteRepository, cacheRepository, notifier)

	return changefeed.Consume(ctx, func(ctx context.Context, change model.VoteChange) error {
		_, err := watcher.HandleChange(ctx, change)
		if errors.Is(err, usecase_consensus.ErrPublishFailed) {
			// The transition already committed; a redelivery would land
			// on the status guard and never republish, so ack and log.
			slog.Error("consensus event publish failed",
				slog.String("room_id", string(change.RoomID)),
				slog.String("error", err.Error()))
			return nil
		}
		return err
	})
}
