package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/hexclash/backend/internal/game"
)

// ArenaHub is the single hub for all arenas.
var ArenaHub *Hub

func init() {
	ArenaHub = NewHub()
	go runArenaHub(ArenaHub)
}

// generateClientID generates a unique spectator connection ID
func generateClientID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "spec_" + hex.EncodeToString(bytes)
}

// HandleWebSocket upgrades a spectator connection and joins it to an arena
// room. The arena is picked with the `arena` query parameter; omitting it
// joins the default arena.
func HandleWebSocket(c *gin.Context) {
	a, err := game.Manager.GetArena(c.Query("arena"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "arena not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:    conn,
		id:      generateClientID(),
		arenaID: a.ID,
		send:    make(chan []byte, 256),
	}

	ArenaHub.register <- client

	go client.writePump()
	go client.readPump()
}

// runArenaHub runs the hub's register/unregister loop.
func runArenaHub(h *Hub) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			if _, exists := h.arenaRooms[client.arenaID]; !exists {
				h.arenaRooms[client.arenaID] = make(map[string]*Client)
			}
			h.arenaRooms[client.arenaID][client.id] = client
			h.mu.Unlock()

			log.Printf("[WS] Client %s connected to arena %s", client.id, client.arenaID)
			game.Manager.SpectatorJoined(client.arenaID)

			// Full board state first so the spectator can draw from scratch;
			// frames only carry deltas.
			if a, err := game.Manager.GetArena(client.arenaID); err == nil {
				h.SendToClient(client.id, a.StateMessage())
			}

		case client := <-h.unregister:
			h.mu.Lock()
			removed := false
			if cur, ok := h.clients[client.id]; ok && cur == client {
				delete(h.clients, client.id)
				if room, exists := h.arenaRooms[client.arenaID]; exists {
					delete(room, client.id)
					if len(room) == 0 {
						delete(h.arenaRooms, client.arenaID)
					}
				}
				select {
				case <-client.send:
				default:
					close(client.send)
				}
				removed = true
			}
			h.mu.Unlock()

			if removed {
				log.Printf("[WS] Client %s disconnected from arena %s", client.id, client.arenaID)
				game.Manager.SpectatorLeft(client.arenaID)
			}
		}
	}
}

// readPump reads control messages from a spectator.
func (c *Client) readPump() {
	defer func() {
		ArenaHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error (unexpected) for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes an inbound spectator message.
func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "request_state":
		a, err := game.Manager.GetArena(c.arenaID)
		if err != nil {
			c.sendError("Arena not found")
			return
		}
		ArenaHub.SendToClient(c.id, a.StateMessage())

	case "ping":
		ArenaHub.SendToClient(c.id, map[string]interface{}{"type": "pong"})

	default:
		c.sendError("Unknown message type")
	}
}
