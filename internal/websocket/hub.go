// Package websocket pushes back-office events (paid orders) to connected
// staff sessions.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/statelink/statelink-backend/pkg/logger"
)

const (
	// Inbound messages allowed per client per second
	maxMessagesPerSecond = 10

	sendBufferSize = 256
)

// Event is the envelope written to every subscriber.
type Event struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data,omitempty"`
	SentAt time.Time   `json:"sent_at"`
}

// ClientMessage is what a subscriber may send. Only "ping" is understood.
type ClientMessage struct {
	Type string `json:"type"`
}

// Client is one connected back-office session.
type Client struct {
	Hub           *Hub
	Conn          *Conn
	UserID        uint
	Send          chan []byte
	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

// NewClient prepares a client for Register.
func NewClient(hub *Hub, conn *Conn, userID uint) *Client {
	return &Client{
		Hub:           hub,
		Conn:          conn,
		UserID:        userID,
		Send:          make(chan []byte, sendBufferSize),
		LastResetTime: time.Now(),
	}
}

// Hub fans events out to every registered client. A user may hold several
// sessions at once.
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 1024),
	}
}

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			for userID, clientList := range h.clients {
				for _, client := range clientList {
					select {
					case client.Send <- message:
					default:
						go h.Unregister(client)
						logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
							"user_id": userID,
						})
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientList, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	remaining := make([]*Client, 0, len(clientList))
	found := false
	for _, c := range clientList {
		if c == client {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return
	}

	if len(remaining) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = remaining
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(remaining),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clientList := range h.clients {
		for _, client := range clientList {
			close(client.Send)
		}
		delete(h.clients, userID)
	}
}

// Publish queues an event for every subscriber. A full queue drops the
// event; the feed is best effort.
func (h *Hub) Publish(eventType string, payload interface{}) error {
	data, err := json.Marshal(Event{Type: eventType, Data: payload, SentAt: time.Now().UTC()})
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{
			"type": eventType,
		})
		return err
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"type": eventType,
		})
	}
	return nil
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ConnectedCount is the number of open sessions.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clientList := range h.clients {
		n += len(clientList)
	}
	return n
}

// HandleClientMessage answers pings and ignores anything else.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type != "ping" {
		return
	}
	pong, _ := json.Marshal(Event{Type: "pong", SentAt: now.UTC()})
	select {
	case client.Send <- pong:
	default:
	}
}
