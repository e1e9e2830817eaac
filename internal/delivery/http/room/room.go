package http_room

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	http_common "github.com/filmquorum/core/internal/delivery/http/common"
	"github.com/filmquorum/core/internal/model"
	usecase_room "github.com/filmquorum/core/internal/usecase/room"
)

type Controller struct {
	usecase *usecase_room.Usecase
	logger  *slog.Logger
}

func New(usecase *usecase_room.Usecase) *Controller {
	return &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("", c.create)
		rooms.GET("/:room_id/status", c.status)
		rooms.POST("/:room_id/members", c.join)
		rooms.POST("/:room_id/voting", c.startVoting)
	}
}

type CreateResponseDTO struct {
	RoomID string `json:"room_id"`
}

// Create opens a new decision room
// @Summary Create a room
// @Description Creates a new room in the WAITING_FOR_MEMBERS state
// @Tags Rooms
// @Produce json
// @Success 201 {object} CreateResponseDTO "Room created"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Router /rooms [post]
func (c *Controller) create(ctx *gin.Context) {
	roomID, err := c.usecase.Create(ctx)
	if err != nil {
		c.logger.Error("failed to create room", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusCreated, CreateResponseDTO{
		RoomID: string(roomID),
	})
}

type StatusResponseDTO struct {
	Status        string `json:"status"`
	MemberCount   int    `json:"member_count"`
	CurrentItemID int64  `json:"current_item_id,omitempty"`
}

// Status reports the room's state
// @Summary Room status
// @Description Returns the room's status, member count and, once consensus is reached, the winning item
// @Tags Rooms
// @Param room_id path string true "Room id"
// @Produce json
// @Success 200 {object} StatusResponseDTO "Room status"
// @Failure 404 {object} http_common.ErrorResponse "Room not found"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Router /rooms/{room_id}/status [get]
func (c *Controller) status(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	room, err := c.usecase.Get(ctx, roomID)
	if err != nil {
		c.logger.Error("failed to get room status", slog.String("error", err.Error()))
		if errors.Is(err, usecase_room.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	resp := StatusResponseDTO{
		Status:      string(room.Status),
		MemberCount: room.MemberCount,
	}
	if room.Status == model.StatusConsensusReached {
		resp.CurrentItemID = room.CurrentItemID
	}
	ctx.JSON(http.StatusOK, resp)
}

type JoinResponseDTO struct {
	MemberCount int `json:"member_count"`
}

// Join adds a member to the room
// @Summary Join a room
// @Description Adds one member while the room is still waiting for members
// @Tags Rooms
// @Param room_id path string true "Room id"
// @Produce json
// @Success 200 {object} JoinResponseDTO "Member added"
// @Failure 404 {object} http_common.ErrorResponse "Room not found"
// @Failure 409 {object} http_common.ErrorResponse "Room no longer accepts members"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Router /rooms/{room_id}/members [post]
func (c *Controller) join(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	count, err := c.usecase.Join(ctx, roomID)
	if err != nil {
		c.logger.Error("failed to join room", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrRoomNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
		case errors.Is(err, usecase_room.ErrWrongStatus):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: "room is not accepting members",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, JoinResponseDTO{
		MemberCount: count,
	})
}

// StartVoting begins the voting phase
// @Summary Start voting
// @Description Flips the room from WAITING_FOR_MEMBERS to VOTING_IN_PROGRESS
// @Tags Rooms
// @Param room_id path string true "Room id"
// @Success 204 "Voting started"
// @Failure 404 {object} http_common.ErrorResponse "Room not found"
// @Failure 409 {object} http_common.ErrorResponse "Room is not waiting for members"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Router /rooms/{room_id}/voting [post]
func (c *Controller) startVoting(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	if err := c.usecase.StartVoting(ctx, roomID); err != nil {
		c.logger.Error("failed to start voting", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrRoomNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
		case errors.Is(err, usecase_room.ErrWrongStatus):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: "voting cannot start in the current status",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
