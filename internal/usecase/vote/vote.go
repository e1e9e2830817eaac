package usecase_vote

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/filmquorum/core/internal/model"
	usecase_room "github.com/filmquorum/core/internal/usecase/room"
	"github.com/google/uuid"
)

var (
	ErrRoomNotFound = usecase_room.ErrRoomNotFound
	ErrNotVoting    = errors.New("room is not voting")
	ErrInternal     = errors.New("internal error")
)

//go:generate mockery --name=VoteRepository --output=./mocks/vote/repository --filename=repository.go
type VoteRepository interface {
	// Record stores the vote and, for an affirmative first vote by
	// this user on this item, bumps the counter. counted is false for
	// duplicates and skips; newCount is the counter value after the
	// write.
	Record(ctx context.Context, vote model.Vote) (newCount int, counted bool, err error)
}

//go:generate mockery --name=RoomRepository --output=./mocks/vote/rooms --filename=rooms.go
type RoomRepository interface {
	Get(ctx context.Context, roomID model.RoomID) (model.Room, error)
}

// ChangeEmitter pushes the counter change onto the feed the consensus
// watcher consumes. Vote writes are the producer side of that feed.
//
//go:generate mockery --name=ChangeEmitter --output=./mocks/vote/emitter --filename=emitter.go
type ChangeEmitter interface {
	Emit(ctx context.Context, change model.VoteChange) error
}

type Usecase struct {
	votes   VoteRepository
	rooms   RoomRepository
	emitter ChangeEmitter
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(votes VoteRepository, rooms RoomRepository, emitter ChangeEmitter, opts ...Option) *Usecase {
	u := &Usecase{
		votes:   votes,
		rooms:   rooms,
		emitter: emitter,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Cast records one member's vote. Voting twice on the same item is a
// silent no-op. Counted yes-votes emit a change notification; the
// notification is best-effort at-least-once, the counter row stays the
// source of truth.
func (u *Usecase) Cast(ctx context.Context, roomID model.RoomID, itemID int64, userID uuid.UUID, kind model.VoteKind) error {
	room, err := u.rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return errors.Join(ErrInternal, err)
	}
	if room.Status != model.StatusVotingInProgress {
		return ErrNotVoting
	}

	vote := model.Vote{
		RoomID:  roomID,
		ItemID:  itemID,
		UserID:  userID,
		Kind:    kind,
		VotedAt: u.now(),
	}

	newCount, counted, err := u.votes.Record(ctx, vote)
	if err != nil {
		return errors.Join(ErrInternal, err)
	}
	if !counted {
		return nil
	}

	changeKind := model.ChangeModify
	if newCount == 1 {
		changeKind = model.ChangeInsert
	}
	change := model.VoteChange{
		RoomID:   roomID,
		ItemID:   itemID,
		Kind:     changeKind,
		YesVotes: newCount,
	}
	if err := u.emitter.Emit(ctx, change); err != nil {
		// The vote is committed; the watcher will still converge on
		// the next counted vote for this item.
		u.logger.Error("failed to emit vote change",
			slog.String("room_id", string(roomID)),
			slog.Int64("item_id", itemID),
			slog.String("error", err.Error()))
	}
	return nil
}
