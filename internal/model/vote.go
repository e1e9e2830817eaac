package model

import (
	"time"

	"github.com/google/uuid"
)

type VoteKind string

const (
	VoteYes  VoteKind = "YES"
	VoteSkip VoteKind = "SKIP"
)

type Vote struct {
	RoomID  RoomID
	ItemID  int64
	UserID  uuid.UUID
	Kind    VoteKind
	VotedAt time.Time
}

// VoteCounter is written by vote intake and read by the consensus
// watcher; the watcher never mutates it.
type VoteCounter struct {
	RoomID   RoomID
	ItemID   int64
	YesVotes int
}

type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeModify ChangeKind = "MODIFY"
)

// VoteChange is one at-least-once change notification for a vote
// counter. Duplicates and reordering are expected.
type VoteChange struct {
	RoomID   RoomID
	ItemID   int64
	Kind     ChangeKind
	YesVotes int
}
