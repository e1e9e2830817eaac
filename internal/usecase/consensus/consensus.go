package usecase_consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/filmquorum/core/internal/model"
	usecase_room "github.com/filmquorum/core/internal/usecase/room"
)

var (
	// ErrRoomNotFound aliases the room usecase sentinel; both sit in
	// front of the same rooms driver.
	ErrRoomNotFound  = usecase_room.ErrRoomNotFound
	ErrPublishFailed = errors.New("consensus publish failed")
	ErrInternal      = errors.New("internal error")
)

type Outcome string

const (
	// OutcomePending: the count has not reached the member count yet.
	// A normal result, not an error.
	OutcomePending Outcome = "PENDING"
	// OutcomeTransitioned: this invocation won the conditional write
	// and performed the room's single consensus transition.
	OutcomeTransitioned Outcome = "TRANSITIONED"
	// OutcomeAlreadyProcessed: another notification got there first.
	// Treated as success; this is the idempotency guarantee under
	// duplicated and reordered delivery.
	OutcomeAlreadyProcessed Outcome = "ALREADY_PROCESSED"
)

//go:generate mockery --name=RoomRepository --output=./mocks/consensus/room --filename=room.go
type RoomRepository interface {
	Get(ctx context.Context, roomID model.RoomID) (model.Room, error)
	// TransitionToConsensus flips the room to CONSENSUS_REACHED and
	// pins the winning item, guarded on the current status still
	// being pre-consensus. Returns false when the guard fails.
	TransitionToConsensus(ctx context.Context, roomID model.RoomID, itemID int64) (bool, error)
}

//go:generate mockery --name=VoteRepository --output=./mocks/consensus/votes --filename=votes.go
type VoteRepository interface {
	Participants(ctx context.Context, roomID model.RoomID, itemID int64) ([]model.Participant, error)
}

//go:generate mockery --name=ItemResolver --output=./mocks/consensus/resolver --filename=resolver.go
type ItemResolver interface {
	ItemByID(ctx context.Context, roomID model.RoomID, itemID int64) (model.CachedItem, error)
}

//go:generate mockery --name=Notifier --output=./mocks/consensus/notifier --filename=notifier.go
type Notifier interface {
	Publish(ctx context.Context, event model.ConsensusEvent) error
}

type Watcher struct {
	rooms    RoomRepository
	votes    VoteRepository
	resolver ItemResolver
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Watcher)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		w.now = now
	}
}

func New(rooms RoomRepository, votes VoteRepository, resolver ItemResolver, notifier Notifier, opts ...Option) *Watcher {
	w := &Watcher{
		rooms:    rooms,
		votes:    votes,
		resolver: resolver,
		notifier: notifier,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleChange reacts to one vote-counter change notification. Any
// number of deliveries in any order produce at most one transition and
// at most one published event per room. A publish failure after the
// transition committed is surfaced alongside the Transitioned outcome
// and never rolled back; the room's status is the source of truth.
func (w *Watcher) HandleChange(ctx context.Context, change model.VoteChange) (Outcome, error) {
	room, err := w.rooms.Get(ctx, change.RoomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return "", ErrRoomNotFound
		}
		return "", errors.Join(ErrInternal, err)
	}

	if room.MemberCount == 0 || change.YesVotes < room.MemberCount {
		return OutcomePending, nil
	}

	won, err := w.rooms.TransitionToConsensus(ctx, change.RoomID, change.ItemID)
	if err != nil {
		return "", errors.Join(ErrInternal, err)
	}
	if !won {
		return OutcomeAlreadyProcessed, nil
	}

	event := model.ConsensusEvent{
		RoomID:      change.RoomID,
		ItemID:      change.ItemID,
		ItemTitle:   w.resolveTitle(ctx, change),
		YesVotes:    change.YesVotes,
		MemberCount: room.MemberCount,
		ReachedAt:   w.now(),
	}

	participants, err := w.votes.Participants(ctx, change.RoomID, change.ItemID)
	if err != nil {
		// Transition already committed: publish what we have rather
		// than losing the event.
		w.logger.Warn("failed to gather participants",
			slog.String("room_id", string(change.RoomID)),
			slog.String("error", err.Error()))
	}
	event.Participants = participants

	if err := w.notifier.Publish(ctx, event); err != nil {
		return OutcomeTransitioned, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	w.logger.Info("consensus reached",
		slog.String("room_id", string(change.RoomID)),
		slog.Int64("item_id", change.ItemID),
		slog.Int("yes_votes", change.YesVotes),
		slog.Int("members", room.MemberCount))
	return OutcomeTransitioned, nil
}

func (w *Watcher) resolveTitle(ctx context.Context, change model.VoteChange) string {
	item, err := w.resolver.ItemByID(ctx, change.RoomID, change.ItemID)
	if err != nil {
		w.logger.Warn("failed to resolve item title",
			slog.String("room_id", string(change.RoomID)),
			slog.Int64("item_id", change.ItemID),
			slog.String("error", err.Error()))
		return ""
	}
	return item.Snapshot.Title
}
