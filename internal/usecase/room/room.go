package usecase_room

import (
	"context"
	"errors"

	"github.com/filmquorum/core/internal/model"
	"github.com/google/uuid"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrWrongStatus  = errors.New("operation not allowed in current status")
	ErrInternal     = errors.New("internal error")
)

//go:generate mockery --name=RoomRepository --output=./mocks/room/repository --filename=repository.go
type RoomRepository interface {
	Create(ctx context.Context, room model.Room) error
	Get(ctx context.Context, roomID model.RoomID) (model.Room, error)
	// AddMember bumps member_count while the room is still waiting for
	// members; returns the new count.
	AddMember(ctx context.Context, roomID model.RoomID) (int, error)
	// StartVoting flips WAITING_FOR_MEMBERS -> VOTING_IN_PROGRESS,
	// guarded on the current status.
	StartVoting(ctx context.Context, roomID model.RoomID) error
}

type Usecase struct {
	rooms RoomRepository
}

func New(rooms RoomRepository) *Usecase {
	return &Usecase{rooms: rooms}
}

func (u *Usecase) Create(ctx context.Context) (model.RoomID, error) {
	roomID := model.RoomID(uuid.NewString())
	room := model.Room{
		ID:     roomID,
		Status: model.StatusWaitingForMembers,
	}
	if err := u.rooms.Create(ctx, room); err != nil {
		return model.EmptyRoomID, errors.Join(ErrInternal, err)
	}
	return roomID, nil
}

func (u *Usecase) Join(ctx context.Context, roomID model.RoomID) (int, error) {
	count, err := u.rooms.AddMember(ctx, roomID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound):
			return 0, ErrRoomNotFound
		case errors.Is(err, ErrWrongStatus):
			return 0, ErrWrongStatus
		default:
			return 0, errors.Join(ErrInternal, err)
		}
	}
	return count, nil
}

func (u *Usecase) StartVoting(ctx context.Context, roomID model.RoomID) error {
	if err := u.rooms.StartVoting(ctx, roomID); err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound):
			return ErrRoomNotFound
		case errors.Is(err, ErrWrongStatus):
			return ErrWrongStatus
		default:
			return errors.Join(ErrInternal, err)
		}
	}
	return nil
}

func (u *Usecase) Get(ctx context.Context, roomID model.RoomID) (model.Room, error) {
	room, err := u.rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return model.Room{}, ErrRoomNotFound
		}
		return model.Room{}, errors.Join(ErrInternal, err)
	}
	return room, nil
}
