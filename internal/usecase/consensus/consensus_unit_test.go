package usecase_consensus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/filmquorum/core/internal/model"
	notifier_mocks "github.com/filmquorum/core/internal/usecase/consensus/mocks/consensus/notifier"
	resolver_mocks "github.com/filmquorum/core/internal/usecase/consensus/mocks/consensus/resolver"
	room_mocks "github.com/filmquorum/core/internal/usecase/consensus/mocks/consensus/room"
	vote_mocks "github.com/filmquorum/core/internal/usecase/consensus/mocks/consensus/votes"
)

type UsecaseConsensusUnitSuite struct {
	suite.Suite
}

type resources struct {
	watcher  *Watcher
	rooms    *room_mocks.RoomRepository
	votes    *vote_mocks.VoteRepository
	resolver *resolver_mocks.ItemResolver
	notifier *notifier_mocks.Notifier
	ctx      context.Context
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func initResources(t provider.T) *resources {
	rooms := room_mocks.NewRoomRepository(t)
	votes := vote_mocks.NewVoteRepository(t)
	resolver := resolver_mocks.NewItemResolver(t)
	notifier := notifier_mocks.NewNotifier(t)

	watcher := New(rooms, votes, resolver, notifier,
		WithClock(func() time.Time { return fixedNow }))

	return &resources{
		watcher:  watcher,
		rooms:    rooms,
		votes:    votes,
		resolver: resolver,
		notifier: notifier,
		ctx:      context.Background(),
	}
}

func votingRoom(id model.RoomID, members int) model.Room {
	return model.Room{
		ID:          id,
		MemberCount: members,
		Status:      model.StatusVotingInProgress,
	}
}

func change(roomID model.RoomID, itemID int64, yes int) model.VoteChange {
	return model.VoteChange{
		RoomID:   roomID,
		ItemID:   itemID,
		Kind:     model.ChangeModify,
		YesVotes: yes,
	}
}

func (s *UsecaseConsensusUnitSuite) TestPendingBelowThreshold(t provider.T) {
	r := initResources(t)
	roomID := model.RoomID("room-1")

	r.rooms.On("Get", r.ctx, roomID).Return(votingRoom(roomID, 3), nil).Once()

	outcome, err := r.watcher.HandleChange(r.ctx, change(roomID, 42, 2))

	assert.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome)
	r.rooms.AssertNotCalled(t, "TransitionToConsensus", mock.Anything, mock.Anything, mock.Anything)
}

func (s *UsecaseConsensusUnitSuite) TestPendingWithZeroMembers(t provider.T) {
	r := initResources(t)
	roomID := model.RoomID("room-empty")

	r.rooms.On("Get", r.ctx, roomID).Return(votingRoom(roomID, 0), nil).Once()

	outcome, err := r.watcher.HandleChange(r.ctx, change(roomID, 42, 5))

	assert.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome, "zero members can never reach consensus")
}

func (s *UsecaseConsensusUnitSuite) TestTransitionPublishesOnce(t provider.T) {
	r := initResources(t)
	roomID := model.RoomID("room-win")

	r.rooms.On("Get", r.ctx, roomID).Return(votingRoom(roomID, 3), nil).Once()
	r.rooms.On("TransitionToConsensus", r.ctx, roomID, int64(42)).Return(true, nil).Once()
	r.resolver.On("ItemByID", r.ctx, roomID, int64(42)).Return(model.CachedItem{
		ItemID:   42,
		Snapshot: model.ItemSnapshot{Title: "The Matrix"},
	}, nil).Once()
	r.votes.On("Participants", r.ctx, roomID, int64(42)).Return([]model.Participant{
		{Kind: model.VoteYes}, {Kind: model.VoteYes}, {Kind: model.VoteYes},
	}, nil).Once()

	var published model.ConsensusEvent
	r.notifier.On("Publish", r.ctx, mock.AnythingOfType("model.ConsensusEvent")).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(model.ConsensusEvent)
		}).
		Return(nil).Once()

	outcome, err := r.watcher.HandleChange(r.ctx, change(roomID, 42, 3))

	require.NoError(t, err)
	assert.Equal(t, OutcomeTransitioned, outcome)
	assert.Equal(t, roomID, published.RoomID)
	assert.Equal(t, int64(42), published.ItemID)
	assert.Equal(t, "The Matrix", published.ItemTitle)
	assert.Equal(t, 3, published.YesVotes)
	assert.Equal(t, 3, published.MemberCount)
	assert.Len(t, published.Participants, 3)
	assert.Equal(t, fixedNow, published.ReachedAt)
}

func (s *UsecaseConsensusUnitSuite) TestOutOfOrderDeliveries(t provider.T) {
	r := initResources(t)
	roomID := model.RoomID("room-ooo")

	// The count-3 notification arrives before count-2: it wins the
	// transition, and the stale count-2 is simply pending.
	r.rooms.On("Get", r.ctx, roomID).Return(votingRoom(roomID, 3), nil).Twice()
	r.rooms.On("TransitionToConsensus", r.ctx, roomID, int64(7)).Return(true, nil).Once()
	r.resolver.On("ItemByID", r.ctx, roomID, int64(7)).Return(model.CachedItem{ItemID: 7}, nil).Once()
	r.votes.On("Participants", r.ctx, roomID, int64(7)).Return(nil, nil).Once()
	r.notifier.On("Publish", r.ctx, mock.AnythingOfType("model.ConsensusEvent")).Return(nil).Once()

	outcome, err := r.watcher.HandleChange(r.ctx, change(roomID, 7, 3))
	require.NoError(t, err)
	assert.Equal(t, OutcomeTransitioned, outcome)

	outcome, err = r.watcher.HandleChange(r.ctx, change(roomID, 7, 2))
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome)
}

func (s *UsecaseConsensusUnitSuite) TestDuplicateDeliveryIsAbsorbed(t provider.T) {
	r := initResources(t)
	roomID := model.RoomID("room-dup")

	r.rooms.On("Get", r.ctx, roomID).Return(votingRoom(roomID, 2), nil).Once()
	r.rooms.On("TransitionToConsensus", r.ctx, roomID, int64(9)).Return(false, nil).Once()

	outcome, err := r.watcher.HandleChange(r.ctx, change(roomID, 9, 2))

	assert.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, outcome)
	r.notifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func (s *UsecaseConsensusUnitSuite) TestPublishFailureKeepsTransition(t provider.T) {
	r := initResources(t)
	roomID := model.RoomID("room-pubfail")

	r.rooms.On("Get", r.ctx, roomID).Return(votingRoom(roomID, 2), nil).Once()
	r.rooms.On("TransitionToConsensus", r.ctx, roomID, int64(5)).Return(true, nil).Once()
	r.resolver.On("ItemByID", r.ctx, roomID, int64(5)).Return(model.CachedItem{ItemID: 5}, nil).Once()
	r.votes.On("Participants", r.ctx, roomID, int64(5)).Return(nil, nil).Once()
	r.notifier.On("Publish", r.ctx, mock.AnythingOfType("model.ConsensusEvent")).
		Return(errors.New("broker down")).Once()

	outcome, err := r.watcher.HandleChange(r.ctx, change(roomID, 5, 2))

	assert.ErrorIs(t, err, ErrPublishFailed)
	assert.Equal(t, OutcomeTransitioned, outcome, "the committed transition is never rolled back")
}

func (s *UsecaseConsensusUnitSuite) TestParticipantFailureStillPublishes(t provider.T) {
	r := initResources(t)
	roomID := model.RoomID("room-part")

	r.rooms.On("Get", r.ctx, roomID).Return(votingRoom(roomID, 2), nil).Once()
	r.rooms.On("TransitionToConsensus", r.ctx, roomID, int64(6)).Return(true, nil).Once()
	r.resolver.On("ItemByID", r.ctx, roomID, int64(6)).Return(model.CachedItem{}, errors.New("gone")).Once()
	r.votes.On("Participants", r.ctx, roomID, int64(6)).Return(nil, errors.New("query failed")).Once()
	r.notifier.On("Publish", r.ctx, mock.AnythingOfType("model.ConsensusEvent")).Return(nil).Once()

	outcome, err := r.watcher.HandleChange(r.ctx, change(roomID, 6, 2))

	assert.NoError(t, err)
	assert.Equal(t, OutcomeTransitioned, outcome)
}

func (s *UsecaseConsensusUnitSuite) TestRoomNotFound(t provider.T) {
	r := initResources(t)
	roomID := model.RoomID("room-404")

	r.rooms.On("Get", r.ctx, roomID).Return(model.Room{}, ErrRoomNotFound).Once()

	_, err := r.watcher.HandleChange(r.ctx, change(roomID, 1, 1))

	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseConsensusUnitSuite))
}
