package infra_postgres_room

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/filmquorum/core/internal/model"
	usecase_room "github.com/filmquorum/core/internal/usecase/room"
	"github.com/jmoiron/sqlx"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type roomDTO struct {
	RoomID        string    `db:"room_id"`
	MemberCount   int       `db:"member_count"`
	Status        string    `db:"status"`
	CurrentItemID int64     `db:"current_item_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (d *Driver) Create(ctx context.Context, room model.Room) error {
	query := `
		INSERT INTO rooms (room_id, member_count, status, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
	`

	_, err := d.db.ExecContext(ctx, query, string(room.ID), room.MemberCount, string(room.Status))
	return err
}

func (d *Driver) Get(ctx context.Context, roomID model.RoomID) (model.Room, error) {
	var room roomDTO

	query := `
		SELECT room_id, member_count, status, current_item_id, created_at, updated_at
		FROM rooms
		WHERE room_id = $1
	`

	err := d.db.GetContext(ctx, &room, query, string(roomID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Room{}, usecase_room.ErrRoomNotFound
		}
		return model.Room{}, err
	}

	return model.Room{
		ID:            model.RoomID(room.RoomID),
		MemberCount:   room.MemberCount,
		Status:        model.RoomStatus(room.Status),
		CurrentItemID: room.CurrentItemID,
		CreatedAt:     room.CreatedAt,
		UpdatedAt:     room.UpdatedAt,
	}, nil
}

func (d *Driver) AddMember(ctx context.Context, roomID model.RoomID) (int, error) {
	var count int

	query := `
		UPDATE rooms
		SET member_count = member_count + 1, updated_at = now()
		WHERE room_id = $1 AND status = $2
		RETURNING member_count
	`

	err := d.db.GetContext(ctx, &count, query, string(roomID), string(model.StatusWaitingForMembers))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, d.notFoundOrWrongStatus(ctx, roomID)
		}
		return 0, err
	}

	return count, nil
}

func (d *Driver) StartVoting(ctx context.Context, roomID model.RoomID) error {
	query := `
		UPDATE rooms
		SET status = $1, updated_at = now()
		WHERE room_id = $2 AND status = $3
	`

	result, err := d.db.ExecContext(ctx, query,
		string(model.StatusVotingInProgress), string(roomID), string(model.StatusWaitingForMembers))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return d.notFoundOrWrongStatus(ctx, roomID)
	}
	return nil
}

// TransitionToConsensus is the room's single one-way transition. The
// status guard makes concurrent notifications race for exactly one
// winner; a lost race is reported as won=false, not an error.
func (d *Driver) TransitionToConsensus(ctx context.Context, roomID model.RoomID, itemID int64) (bool, error) {
	query := `
		UPDATE rooms
		SET status = $1, current_item_id = $2, updated_at = now()
		WHERE room_id = $3 AND status IN ($4, $5)
	`

	result, err := d.db.ExecContext(ctx, query,
		string(model.StatusConsensusReached), itemID, string(roomID),
		string(model.StatusWaitingForMembers), string(model.StatusVotingInProgress))
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (d *Driver) notFoundOrWrongStatus(ctx context.Context, roomID model.RoomID) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM rooms WHERE room_id = $1)`

	if err := d.db.GetContext(ctx, &exists, query, string(roomID)); err != nil {
		return err
	}
	if !exists {
		return usecase_room.ErrRoomNotFound
	}
	return usecase_room.ErrWrongStatus
}
