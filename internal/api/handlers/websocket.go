package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hexclash/backend/internal/ws"
)

// HandleArenaWebSocket streams board state and frame deltas to spectators
func HandleArenaWebSocket() gin.HandlerFunc {
	return ws.HandleWebSocket
}
