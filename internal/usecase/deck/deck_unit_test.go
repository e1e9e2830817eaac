package usecase_deck

import (
	"context"
	"testing"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmquorum/core/internal/model"
	cursor_mocks "github.com/filmquorum/core/internal/usecase/deck/mocks/deck/repository"
)

type UsecaseDeckUnitSuite struct {
	suite.Suite
}

type resources struct {
	usecase *Usecase
	cursor  *cursor_mocks.CursorRepository
	ctx     context.Context
}

func initResources(t provider.T, lowCardWindow int) *resources {
	cursor := cursor_mocks.NewCursorRepository(t)
	return &resources{
		usecase: New(cursor, lowCardWindow),
		cursor:  cursor,
		ctx:     context.Background(),
	}
}

func cached(roomID model.RoomID, index int) model.CachedItem {
	return model.CachedItem{
		RoomID:        roomID,
		SequenceIndex: index,
		ItemID:        int64(1000 + index),
		Snapshot:      model.ItemSnapshot{Title: "Movie"},
	}
}

func (s *UsecaseDeckUnitSuite) TestNextServesEveryIndexOnceThenDone(t provider.T) {
	const itemCount = 50
	r := initResources(t, 5)
	roomID := model.RoomID("room-seq")

	for i := 0; i < itemCount; i++ {
		r.cursor.On("Advance", r.ctx, roomID).Return(i, itemCount, nil).Once()
		r.cursor.On("ItemAt", r.ctx, roomID, i).Return(cached(roomID, i), nil).Once()
	}
	r.cursor.On("Advance", r.ctx, roomID).Return(0, 0, ErrExhausted)

	served := make([]int, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		card, err := r.usecase.Next(r.ctx, roomID)
		require.NoError(t, err)
		require.NotNil(t, card.Item)
		assert.False(t, card.Done)
		served = append(served, card.Item.SequenceIndex)
	}

	for i, index := range served {
		assert.Equal(t, i, index, "cards must come out in sequence order")
	}

	// The 51st call and every one after it is the terminal marker.
	for i := 0; i < 3; i++ {
		card, err := r.usecase.Next(r.ctx, roomID)
		require.NoError(t, err)
		assert.True(t, card.Done)
		assert.Nil(t, card.Item)
		assert.NotEmpty(t, card.Message)
	}
}

func (s *UsecaseDeckUnitSuite) TestNextFlagsRunningLow(t provider.T) {
	r := initResources(t, 5)
	roomID := model.RoomID("room-low")

	// Index 43 of 50 leaves 6 remaining: not yet low.
	r.cursor.On("Advance", r.ctx, roomID).Return(43, 50, nil).Once()
	r.cursor.On("ItemAt", r.ctx, roomID, 43).Return(cached(roomID, 43), nil).Once()

	card, err := r.usecase.Next(r.ctx, roomID)
	require.NoError(t, err)
	assert.False(t, card.RunningLow)
	assert.Equal(t, 6, card.Remaining)

	// Index 44 leaves 5 remaining: inside the window.
	r.cursor.On("Advance", r.ctx, roomID).Return(44, 50, nil).Once()
	r.cursor.On("ItemAt", r.ctx, roomID, 44).Return(cached(roomID, 44), nil).Once()

	card, err = r.usecase.Next(r.ctx, roomID)
	require.NoError(t, err)
	assert.True(t, card.RunningLow)
	assert.Equal(t, 5, card.Remaining)
	assert.Contains(t, card.Message, "5 cards left")
	assert.False(t, card.Done, "running low is an advisory, not a terminal state")
}

func (s *UsecaseDeckUnitSuite) TestNextWithoutDeck(t provider.T) {
	r := initResources(t, 5)
	roomID := model.RoomID("room-missing")

	r.cursor.On("Advance", r.ctx, roomID).Return(0, 0, ErrCacheNotFound).Once()

	_, err := r.usecase.Next(r.ctx, roomID)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func (s *UsecaseDeckUnitSuite) TestNextTreatsMissingItemAsEndOfDeck(t provider.T) {
	r := initResources(t, 5)
	roomID := model.RoomID("room-hole")

	// Advance succeeded but the item row is gone (set deleted
	// mid-delivery): the caller gets the terminal card, not an error.
	r.cursor.On("Advance", r.ctx, roomID).Return(7, 50, nil).Once()
	r.cursor.On("ItemAt", r.ctx, roomID, 7).Return(model.CachedItem{}, ErrCacheNotFound).Once()

	card, err := r.usecase.Next(r.ctx, roomID)
	require.NoError(t, err)
	assert.True(t, card.Done)
	assert.Nil(t, card.Item)
	assert.NotEmpty(t, card.Message)
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseDeckUnitSuite))
}
