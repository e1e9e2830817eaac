package model

import (
	"time"

	"github.com/google/uuid"
)

type Participant struct {
	UserID  uuid.UUID `json:"user_id"`
	VotedAt time.Time `json:"voted_at"`
	Kind    VoteKind  `json:"kind"`
}

// ConsensusEvent is produced exactly once per room, right after the
// one-way status transition commits.
type ConsensusEvent struct {
	RoomID       RoomID        `json:"room_id"`
	ItemID       int64         `json:"item_id"`
	ItemTitle    string        `json:"item_title"`
	Participants []Participant `json:"participants"`
	YesVotes     int           `json:"yes_votes"`
	MemberCount  int           `json:"member_count"`
	ReachedAt    time.Time     `json:"reached_at"`
}
