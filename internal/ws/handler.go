package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// checkOrigin enforces the configured origin allowlist in production and
// lets everything through elsewhere.
func checkOrigin(r *http.Request) bool {
	if wsConfig == nil || wsConfig.Environment != "production" {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	for _, allowed := range strings.Split(wsConfig.AllowedOrigins, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}
	return false
}

// Client represents a connected spectator
type Client struct {
	conn    *websocket.Conn
	id      string
	arenaID string
	send    chan []byte
}

// Hub maintains the set of connected spectators grouped by arena
type Hub struct {
	clients    map[string]*Client            // client ID -> Client
	arenaRooms map[string]map[string]*Client // arena ID -> client ID -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		arenaRooms: make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// BroadcastToArena sends a message to every spectator of an arena
func (h *Hub) BroadcastToArena(arenaID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, exists := h.arenaRooms[arenaID]; exists {
		for _, client := range room {
			select {
			case client.send <- data:
			default:
				// Slow consumer; drop rather than stall the arena loop
				log.Printf("[WS] send buffer full for client %s in arena %s, dropping message", client.id, arenaID)
			}
		}
	}
}

// SendToClient sends a message to a single spectator
func (h *Hub) SendToClient(clientID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[clientID]; exists {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] SendToClient dropped message for client %s (buffer full)", clientID)
		}
	}
}

// RoomSize returns the number of spectators in an arena room
func (h *Hub) RoomSize(arenaID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.arenaRooms[arenaID])
}

// WSMessage is the envelope for inbound spectator messages
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed; best-effort close frame
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("WebSocket ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	select {
	case c.send <- data:
	default:
	}
}
