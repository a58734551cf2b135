package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hexclash/backend/internal/config"
	"github.com/hexclash/backend/internal/game"
	"github.com/hexclash/backend/internal/sim"
)

// GetConfig returns minimal config values required by frontend
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"board_width":     cfg.BoardWidth,
			"board_height":    cfg.BoardHeight,
			"roster_size":     cfg.RosterSize,
			"time_scale":      cfg.TimeScale,
			"max_roster_size": sim.MaxRosterSize,
			"max_time_scale":  sim.MaxTimeScale,
			"default_arena":   game.DefaultArenaID,
			"broadcast_hz":    game.BroadcastHz,
		})
	}
}
