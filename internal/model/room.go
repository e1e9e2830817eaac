package model

import "time"

type RoomID string

const EmptyRoomID RoomID = ""

type RoomStatus string

// Room status is a one-way ratchet. Once CONSENSUS_REACHED no further
// transition is permitted.
const (
	StatusWaitingForMembers RoomStatus = "WAITING_FOR_MEMBERS"
	StatusVotingInProgress  RoomStatus = "VOTING_IN_PROGRESS"
	StatusConsensusReached  RoomStatus = "CONSENSUS_REACHED"
)

type Room struct {
	ID            RoomID
	MemberCount   int
	Status        RoomStatus
	CurrentItemID int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
