package http_deck

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	http_common "github.com/filmquorum/core/internal/delivery/http/common"
	"github.com/filmquorum/core/internal/model"
	usecase_curation "github.com/filmquorum/core/internal/usecase/curation"
	usecase_deck "github.com/filmquorum/core/internal/usecase/deck"
)

type Controller struct {
	curation *usecase_curation.Usecase
	deck     *usecase_deck.Usecase
	logger   *slog.Logger
}

func New(curation *usecase_curation.Usecase, deck *usecase_deck.Usecase) *Controller {
	return &Controller{
		curation: curation,
		deck:     deck,
		logger:   slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	decks := router.Group("/rooms/:room_id/deck")
	{
		decks.POST("", c.materialize)
		decks.PUT("", c.refresh)
		decks.GET("/next", c.next)
	}
}

type MaterializeRequestDTO struct {
	Category string  `json:"category" binding:"required"`
	GenreIDs []int64 `json:"genre_ids"`
}

type DeckResponseDTO struct {
	Status    string `json:"status"`
	ItemCount int    `json:"item_count"`
	Batch     int    `json:"batch"`
}

// Materialize builds the room's curated deck
// @Summary Materialize a deck
// @Description Curates and stores the room's fixed-size ordered deck. Re-invoking for a READY deck is a no-op.
// @Tags Decks
// @Accept json
// @Produce json
// @Param room_id path string true "Room id"
// @Param criteria body MaterializeRequestDTO true "Curation criteria"
// @Success 201 {object} DeckResponseDTO "Deck materialized"
// @Failure 400 {object} http_common.ErrorResponse "Bad criteria"
// @Failure 422 {object} http_common.ErrorResponse "Not enough candidates"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Router /rooms/{room_id}/deck [post]
func (c *Controller) materialize(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	var req MaterializeRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid criteria",
		})
		return
	}

	category := model.Category(req.Category)
	if category != model.CategoryMovie && category != model.CategorySeries {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "category must be MOVIE or SERIES",
		})
		return
	}

	criteria := model.CurationCriteria{
		Category: category,
		GenreIDs: req.GenreIDs,
	}

	meta, err := c.curation.Materialize(ctx, roomID, criteria)
	if err != nil {
		c.respondCurationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, DeckResponseDTO{
		Status:    string(meta.Status),
		ItemCount: meta.ItemCount,
		Batch:     meta.BatchNumber,
	})
}

// Refresh rebuilds the deck with its pinned criteria
// @Summary Refresh a deck
// @Description Drops the cached items and re-curates with the criteria pinned at first materialization
// @Tags Decks
// @Produce json
// @Param room_id path string true "Room id"
// @Success 200 {object} DeckResponseDTO "Deck refreshed"
// @Failure 404 {object} http_common.ErrorResponse "Deck not found"
// @Failure 422 {object} http_common.ErrorResponse "Not enough candidates"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Router /rooms/{room_id}/deck [put]
func (c *Controller) refresh(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	meta, err := c.curation.Refresh(ctx, roomID)
	if err != nil {
		c.respondCurationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, DeckResponseDTO{
		Status:    string(meta.Status),
		ItemCount: meta.ItemCount,
		Batch:     meta.BatchNumber,
	})
}

type CardItemDTO struct {
	ItemID        int64              `json:"item_id"`
	SequenceIndex int                `json:"sequence_index"`
	Snapshot      model.ItemSnapshot `json:"snapshot"`
}

type CardResponseDTO struct {
	Item       *CardItemDTO `json:"item,omitempty"`
	Done       bool         `json:"done"`
	Message    string       `json:"message,omitempty"`
	RunningLow bool         `json:"running_low,omitempty"`
	Remaining  int          `json:"remaining"`
}

// Next serves the next card from the deck
// @Summary Next card
// @Description Serves the card at the room's cursor and advances it. Past the end it returns a terminal done marker.
// @Tags Decks
// @Produce json
// @Param room_id path string true "Room id"
// @Success 200 {object} CardResponseDTO "Next card or end-of-deck marker"
// @Failure 404 {object} http_common.ErrorResponse "Deck not found"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Router /rooms/{room_id}/deck/next [get]
func (c *Controller) next(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	card, err := c.deck.Next(ctx, roomID)
	if err != nil {
		c.logger.Error("failed to serve next card", slog.String("error", err.Error()))
		if errors.Is(err, usecase_deck.ErrCacheNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "deck not found",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	resp := CardResponseDTO{
		Done:       card.Done,
		Message:    card.Message,
		RunningLow: card.RunningLow,
		Remaining:  card.Remaining,
	}
	if card.Item != nil {
		resp.Item = &CardItemDTO{
			ItemID:        card.Item.ItemID,
			SequenceIndex: card.Item.SequenceIndex,
			Snapshot:      card.Item.Snapshot,
		}
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) respondCurationError(ctx *gin.Context, err error) {
	c.logger.Error("deck curation failed", slog.String("error", err.Error()))
	switch {
	case errors.Is(err, usecase_curation.ErrCacheNotFound):
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Message: "deck not found",
		})
	case errors.Is(err, usecase_curation.ErrNoCandidatesFound):
		ctx.JSON(http.StatusUnprocessableEntity, http_common.ErrorResponse{
			Message: "no candidates match the criteria",
		})
	case errors.Is(err, usecase_curation.ErrInvalidItemCount):
		ctx.JSON(http.StatusUnprocessableEntity, http_common.ErrorResponse{
			Message: "not enough candidates to fill the deck",
		})
	default:
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
	}
}
