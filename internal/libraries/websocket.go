package libraries

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studio-space-backend/internal/logger"
)

// WebSocketMessageType names every message on a board socket.
type WebSocketMessageType string

const (
	WebSocketMessageTypePing  WebSocketMessageType = "ping"
	WebSocketMessageTypePong  WebSocketMessageType = "pong"
	WebSocketMessageTypeError WebSocketMessageType = "error"

	EventImageCreated    WebSocketMessageType = "image_created"
	EventImageUpdated    WebSocketMessageType = "image_updated"
	EventImageDeleted    WebSocketMessageType = "image_deleted"
	EventImagesReordered WebSocketMessageType = "images_reordered"
	EventBoardUpdated    WebSocketMessageType = "board_updated"
	EventTagsUpdated     WebSocketMessageType = "tags_updated"
	EventBoardDeleted    WebSocketMessageType = "board_deleted"
)

type WebSocketMessage struct {
	Type WebSocketMessageType `json:"type"`
	Data interface{}          `json:"data,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type Client struct {
	ID      string
	BoardID uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// trySend queues msg without blocking. It reports false when the client is
// gone or its buffer is full.
func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

type roomMessage struct {
	boardID uuid.UUID
	payload []byte
}

// Hub owns the rooms. Only Run touches the map.
type Hub struct {
	rooms      map[uuid.UUID]map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan roomMessage
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan roomMessage, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, room := range h.rooms {
				for _, client := range room {
					client.close()
				}
			}
			return
		case client := <-h.Register:
			room, ok := h.rooms[client.BoardID]
			if !ok {
				room = make(map[string]*Client)
				h.rooms[client.BoardID] = room
			}
			room[client.ID] = client
		case client := <-h.Unregister:
			h.remove(client)
		case msg := <-h.Broadcast:
			for _, client := range h.rooms[msg.boardID] {
				if !client.trySend(msg.payload) {
					// slow reader, drop it rather than stall the room
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	room, ok := h.rooms[client.BoardID]
	if !ok {
		return
	}
	if _, exists := room[client.ID]; !exists {
		return
	}
	delete(room, client.ID)
	if len(room) == 0 {
		delete(h.rooms, client.BoardID)
	}
	client.close()
}

// Publish sends an event to everyone watching boardID.
func (h *Hub) Publish(boardID uuid.UUID, eventType WebSocketMessageType, data interface{}) {
	payload, err := json.Marshal(WebSocketMessage{Type: eventType, Data: data})
	if err != nil {
		logger.Log.WithError(err).Error("failed to marshal board event")
		return
	}
	select {
	case h.Broadcast <- roomMessage{boardID: boardID, payload: payload}:
	case <-h.done:
	}
}

// Join and Leave are no-ops once the hub has stopped.
func (h *Hub) Join(client *Client) {
	select {
	case h.Register <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func send(client *Client, msg WebSocketMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		logger.Log.WithError(err).Error("failed to marshal websocket message")
		return
	}
	client.trySend(b)
}

func parseWebSocketMessage(msg []byte) (*WebSocketMessage, error) {
	var message WebSocketMessage
	if err := json.Unmarshal(msg, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// BoardReader decides whether the bearer of token may watch a board.
type BoardReader interface {
	CanWatch(ctx context.Context, boardID uuid.UUID, token string) (int, error)
}

// WebSocketGuard runs before the upgrade: it checks the board id and access
// and stashes the board id for WebSocketHandler.
func WebSocketGuard(access BoardReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		boardID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid board ID"})
		}
		status, err := access.CanWatch(c.UserContext(), boardID, c.Query("token"))
		if err != nil {
			return err
		}
		if status != fiber.StatusOK {
			return c.Status(status).JSON(fiber.Map{"error": "Board not found or access denied"})
		}
		c.Locals("boardID", boardID)
		return c.Next()
	}
}

func WebSocketHandler(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		boardID, _ := conn.Locals("boardID").(uuid.UUID)
		client := &Client{
			ID:      uuid.NewString(),
			BoardID: boardID,
			Conn:    conn,
			Send:    make(chan []byte, 256),
		}
		log := logger.Log.WithField("board_id", boardID).WithField("client_id", client.ID)

		hub.Join(client)

		// Write loop
		done := make(chan struct{})
		go func() {
			defer close(done)
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.WithError(err).Debug("websocket write failed")
					return
				}
			}
		}()

		// Read loop
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			message, err := parseWebSocketMessage(msg)
			if err != nil {
				send(client, WebSocketMessage{Type: WebSocketMessageTypeError, Data: ErrorPayload{Message: "Invalid JSON format"}})
				continue
			}
			if message.Type == WebSocketMessageTypePing {
				send(client, WebSocketMessage{Type: WebSocketMessageTypePong})
				continue
			}
			send(client, WebSocketMessage{Type: WebSocketMessageTypeError, Data: ErrorPayload{Message: "Type is invalid or not provided"}})
		}

		hub.Leave(client)
		<-done
		conn.Close()
	})
}
