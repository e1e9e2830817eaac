package usecase_deck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/filmquorum/core/internal/model"
)

var (
	ErrCacheNotFound = errors.New("room cache not found")
	// ErrExhausted is how the repository reports that the cursor sits
	// at the end of the set; the usecase converts it into the normal
	// end-of-deck result rather than an error.
	ErrExhausted = errors.New("sequence exhausted")
	ErrInternal  = errors.New("internal error")
)

const endOfDeckMessage = "That's every card in this room's deck. Time to decide!"

//go:generate mockery --name=CursorRepository --output=./mocks/deck/repository --filename=repository.go
type CursorRepository interface {
	// Advance atomically increments the room's cursor while it is
	// below the item count and returns the served index plus the item
	// count. ErrExhausted when the cursor is already at the end,
	// ErrCacheNotFound when the metadata row is gone.
	Advance(ctx context.Context, roomID model.RoomID) (served int, itemCount int, err error)
	ItemAt(ctx context.Context, roomID model.RoomID, index int) (model.CachedItem, error)
}

// Card is one delivery step. Done marks the normal terminal state;
// RunningLow is a non-fatal advisory attached near the end of the set.
type Card struct {
	Item       *model.CachedItem
	Done       bool
	Message    string
	RunningLow bool
	Remaining  int
}

type Usecase struct {
	cursor        CursorRepository
	lowCardWindow int
	logger        *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(cursor CursorRepository, lowCardWindow int, opts ...Option) *Usecase {
	u := &Usecase{
		cursor:        cursor,
		lowCardWindow: lowCardWindow,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Next serves the card at the room's cursor and advances it by one.
// Concurrent callers race for adjacent indices; each index is served
// at most once.
func (u *Usecase) Next(ctx context.Context, roomID model.RoomID) (Card, error) {
	served, itemCount, err := u.cursor.Advance(ctx, roomID)
	if err != nil {
		switch {
		case errors.Is(err, ErrExhausted):
			return Card{Done: true, Message: endOfDeckMessage}, nil
		case errors.Is(err, ErrCacheNotFound):
			return Card{}, ErrCacheNotFound
		default:
			return Card{}, errors.Join(ErrInternal, err)
		}
	}

	item, err := u.cursor.ItemAt(ctx, roomID, served)
	if err != nil {
		if errors.Is(err, ErrCacheNotFound) {
			// Cursor advanced but no item exists at the served index:
			// the set was deleted mid-delivery. The deck is over for
			// this caller, same terminal card as exhaustion.
			u.logger.Warn("no item at served index",
				slog.String("room_id", string(roomID)),
				slog.Int("index", served))
			return Card{Done: true, Message: endOfDeckMessage}, nil
		}
		return Card{}, errors.Join(ErrInternal, err)
	}

	remaining := itemCount - (served + 1)
	card := Card{
		Item:      &item,
		Remaining: remaining,
	}
	if remaining <= u.lowCardWindow {
		card.RunningLow = true
		card.Message = fmt.Sprintf("Only %d cards left in this deck.", remaining)
	}
	return card, nil
}
