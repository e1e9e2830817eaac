package ws_room

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/filmquorum/core/internal/model"
)

type MessageType string

const (
	ConsensusReached MessageType = "consensus_reached"
)

type Message struct {
	Type   MessageType            `json:"type"`
	RoomID string                 `json:"room_id"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	RoomID model.RoomID
}

type Hub struct {
	mu sync.RWMutex

	// Sets of clients keyed by room.
	rooms map[model.RoomID]map[*Client]bool

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func New(logger *slog.Logger) *Hub {
	return &Hub{
		rooms: make(map[model.RoomID]map[*Client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *Hub) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rooms/:room_id/ws", h.attach)
}

func (h *Hub) attach(ctx *gin.Context) {
	roomID := model.RoomID(ctx.Param("room_id"))

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err.Error())
		return
	}

	client := &Client{
		Hub:    h,
		Conn:   conn,
		Send:   make(chan []byte, 8),
		RoomID: roomID,
	}
	h.RegisterClient(client)

	go h.StartClientWriting(client)
	go h.StartClientReading(client)
}

func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[client.RoomID]; !ok {
		h.rooms[client.RoomID] = make(map[*Client]bool)
	}
	h.rooms[client.RoomID][client] = true

	h.logger.Info("client registered", "room_id", client.RoomID)
}

func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[client.RoomID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.RoomID)
		}
	}
	h.logger.Info("client unregistered", "room_id", client.RoomID)
}

func (h *Hub) BroadcastToRoom(roomID model.RoomID, message Message) {
	// Full lock: slow clients get evicted from the room map below.
	h.mu.Lock()
	defer h.mu.Unlock()

	messageBytes, _ := json.Marshal(message)

	if clients, ok := h.rooms[roomID]; ok {
		for client := range clients {
			select {
			case client.Send <- messageBytes:
			default:
				close(client.Send)
				delete(h.rooms[roomID], client)
			}
		}
	}
}

// BroadcastConsensus fans a consensus event out to the room's clients.
func (h *Hub) BroadcastConsensus(event model.ConsensusEvent) {
	h.BroadcastToRoom(event.RoomID, Message{
		Type:   ConsensusReached,
		RoomID: string(event.RoomID),
		Data: map[string]interface{}{
			"item_id":      event.ItemID,
			"item_title":   event.ItemTitle,
			"yes_votes":    event.YesVotes,
			"member_count": event.MemberCount,
			"reached_at":   event.ReachedAt,
		},
	})
}

func (h *Hub) StartClientReading(client *Client) {
	defer func() {
		h.RemoveClient(client)
		client.Conn.Close()
	}()

	for {
		_, _, err := client.Conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

func (h *Hub) StartClientWriting(client *Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		err := client.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			break
		}
	}
}
