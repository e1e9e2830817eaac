package http_vote

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	http_common "github.com/filmquorum/core/internal/delivery/http/common"
	"github.com/filmquorum/core/internal/model"
	usecase_vote "github.com/filmquorum/core/internal/usecase/vote"
)

type Controller struct {
	usecase *usecase_vote.Usecase
	logger  *slog.Logger
}

func New(usecase *usecase_vote.Usecase) *Controller {
	return &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/rooms/:room_id/votes", c.cast)
}

type CastRequestDTO struct {
	ItemID int64  `json:"item_id" binding:"required"`
	UserID string `json:"user_id" binding:"required"`
	Kind   string `json:"kind" binding:"required"`
}

// Cast records one member's vote
// @Summary Cast a vote
// @Description Records a YES or SKIP vote. Repeating a vote on the same item is a silent no-op.
// @Tags Votes
// @Accept json
// @Param room_id path string true "Room id"
// @Param vote body CastRequestDTO true "Vote"
// @Success 202 "Vote accepted"
// @Failure 400 {object} http_common.ErrorResponse "Bad vote"
// @Failure 404 {object} http_common.ErrorResponse "Room not found"
// @Failure 409 {object} http_common.ErrorResponse "Room is not voting"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Router /rooms/{room_id}/votes [post]
func (c *Controller) cast(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	var req CastRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid vote",
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "user_id must be a uuid",
		})
		return
	}

	kind := model.VoteKind(req.Kind)
	if kind != model.VoteYes && kind != model.VoteSkip {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "kind must be YES or SKIP",
		})
		return
	}

	if err := c.usecase.Cast(ctx, roomID, req.ItemID, userID, kind); err != nil {
		c.logger.Error("failed to cast vote", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_vote.ErrRoomNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
		case errors.Is(err, usecase_vote.ErrNotVoting):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: "room is not voting",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.Status(http.StatusAccepted)
}
