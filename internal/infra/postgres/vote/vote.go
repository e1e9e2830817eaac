package infra_postgres_vote

import (
	"context"
	"time"

	"github.com/filmquorum/core/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Driver owns the votes and vote_counters tables.
type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type participantDTO struct {
	UserID  uuid.UUID `db:"user_id"`
	Kind    string    `db:"kind"`
	VotedAt time.Time `db:"voted_at"`
}

// Record stores the vote and bumps the counter when it is a first
// affirmative vote by this user on this item. The vote insert and the
// counter bump share a transaction; a replayed request hits the
// conflict clause, inserts nothing and leaves the counter alone.
func (d *Driver) Record(ctx context.Context, vote model.Vote) (int, bool, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = tx.Rollback() }()

	insertVote := `
		INSERT INTO votes (room_id, item_id, user_id, kind, voted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (room_id, item_id, user_id) DO NOTHING
	`

	result, err := tx.ExecContext(ctx, insertVote,
		string(vote.RoomID), vote.ItemID, vote.UserID, string(vote.Kind), vote.VotedAt)
	if err != nil {
		return 0, false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if rowsAffected == 0 || vote.Kind != model.VoteYes {
		if err := tx.Commit(); err != nil {
			return 0, false, err
		}
		return 0, false, nil
	}

	bumpCounter := `
		INSERT INTO vote_counters (room_id, item_id, yes_votes)
		VALUES ($1, $2, 1)
		ON CONFLICT (room_id, item_id)
		DO UPDATE SET yes_votes = vote_counters.yes_votes + 1
		RETURNING yes_votes
	`

	var newCount int
	if err := tx.GetContext(ctx, &newCount, bumpCounter, string(vote.RoomID), vote.ItemID); err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return newCount, true, nil
}

// Participants lists everyone who voted yes on the item, ordered by
// vote time.
func (d *Driver) Participants(ctx context.Context, roomID model.RoomID, itemID int64) ([]model.Participant, error) {
	var dtos []participantDTO

	query := `
		SELECT user_id, kind, voted_at
		FROM votes
		WHERE room_id = $1 AND item_id = $2 AND kind = $3
		ORDER BY voted_at
	`

	err := d.db.SelectContext(ctx, &dtos, query, string(roomID), itemID, string(model.VoteYes))
	if err != nil {
		return nil, err
	}

	participants := make([]model.Participant, 0, len(dtos))
	for _, dto := range dtos {
		participants = append(participants, model.Participant{
			UserID:  dto.UserID,
			Kind:    model.VoteKind(dto.Kind),
			VotedAt: dto.VotedAt,
		})
	}
	return participants, nil
}
