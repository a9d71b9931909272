package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"todo-api/pkg/logger"
)

// writeWait bounds each event write.
const writeWait = 5 * time.Second

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one open connection of an authenticated user. mu serializes
// writes with Unregister; once closed is set conn is never touched again.
type Client struct {
	UserID int64
	conn   Conn
	mu     sync.Mutex
	closed bool
}

// Message is the JSON frame sent for every change event.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans change events out to the connections of the user who made them.
// Publish writes synchronously from the calling request.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) Register(userID int64, conn Conn) *Client {
	client := &Client{UserID: userID, conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	return client
}

// Unregister removes and closes client. It waits for a write in progress,
// and no write reaches conn after it returns. It is safe to call twice.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if set, ok := h.clients[client.UserID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	h.mu.Unlock()

	client.mu.Lock()
	defer client.mu.Unlock()
	if client.closed {
		return
	}
	client.closed = true
	client.conn.Close()
}

// Count reports the open connections of userID.
func (h *Hub) Count(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) Publish(userID int64, event string, data any) {
	payload, err := json.Marshal(Message{Type: event, Data: data})
	if err != nil {
		logger.ErrorLogger.Error("Encode websocket event", zap.String("type", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for client := range h.clients[userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.write(payload); err != nil {
			logger.SystemLogger.Info("Dropping websocket client", zap.Int64("user_id", userID), zap.Error(err))
			h.Unregister(client)
		}
	}
}

// write sends payload unless the client was unregistered in the meantime.
func (c *Client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}
