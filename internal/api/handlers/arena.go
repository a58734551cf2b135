package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/hexclash/backend/internal/admin"
	"github.com/hexclash/backend/internal/config"
	"github.com/hexclash/backend/internal/game"
)

// ListArenas returns a summary of every live arena
func ListArenas() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"arenas": game.Manager.ListArenas(),
			"count":  game.Manager.ArenaCount(),
		})
	}
}

// GetArenaState returns the full board snapshot for one arena
func GetArenaState() gin.HandlerFunc {
	return func(c *gin.Context) {
		a := arenaFromQuery(c)
		if a == nil {
			return
		}
		c.JSON(http.StatusOK, a.Snapshot())
	}
}

// GetArenaScore returns the current points tally for one arena
func GetArenaScore() gin.HandlerFunc {
	return func(c *gin.Context) {
		a := arenaFromQuery(c)
		if a == nil {
			return
		}
		white, black := a.Score()
		c.JSON(http.StatusOK, gin.H{
			"arena_id":     a.ID,
			"points_white": white,
			"points_black": black,
		})
	}
}

// CreateArena provisions a new arena, defaulting unspecified parameters
// from server config
func CreateArena(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Width      float64  `json:"width"`
			Height     float64  `json:"height"`
			RosterSize *int     `json:"roster_size"`
			TimeScale  *float64 `json:"time_scale"`
			Seed       int64    `json:"seed"`
			AutoStart  bool     `json:"auto_start"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		params := game.ArenaParams{
			Width:      req.Width,
			Height:     req.Height,
			RosterSize: cfg.RosterSize,
			TimeScale:  cfg.TimeScale,
			Seed:       req.Seed,
		}
		if params.Width == 0 {
			params.Width = cfg.BoardWidth
		}
		if params.Height == 0 {
			params.Height = cfg.BoardHeight
		}
		if req.RosterSize != nil {
			params.RosterSize = *req.RosterSize
		}
		if req.TimeScale != nil {
			params.TimeScale = *req.TimeScale
		}

		a, err := game.Manager.CreateArena(params)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.AutoStart {
			if err := a.Start(); err != nil {
				log.Printf("[API] Failed to auto-start arena %s: %v", a.ID, err)
			}
		}

		admin.LogAction(db, operatorFromContext(c), "create_arena", a.ID, map[string]interface{}{
			"width":       params.Width,
			"height":      params.Height,
			"roster_size": params.RosterSize,
			"auto_start":  req.AutoStart,
		})
		c.JSON(http.StatusCreated, a.Snapshot())
	}
}

// StartArena begins or resumes play
func StartArena(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := arenaFromQuery(c)
		if a == nil {
			return
		}
		if err := a.Start(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		admin.LogAction(db, operatorFromContext(c), "start", a.ID, nil)
		c.JSON(http.StatusOK, gin.H{"arena_id": a.ID, "status": a.Status()})
	}
}

// StopArena pauses play without discarding board state
func StopArena(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := arenaFromQuery(c)
		if a == nil {
			return
		}
		if err := a.Stop(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		admin.LogAction(db, operatorFromContext(c), "stop", a.ID, nil)
		c.JSON(http.StatusOK, gin.H{"arena_id": a.ID, "status": a.Status()})
	}
}

// ResetArenaBoard wipes the grid and scores, recording the finished match
func ResetArenaBoard(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := arenaFromQuery(c)
		if a == nil {
			return
		}
		if err := a.ResetBoard(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		admin.LogAction(db, operatorFromContext(c), "reset_board", a.ID, nil)
		c.JSON(http.StatusOK, gin.H{"arena_id": a.ID, "status": a.Status()})
	}
}

// SetArenaTimeScale adjusts the simulation speed multiplier
func SetArenaTimeScale(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := arenaFromQuery(c)
		if a == nil {
			return
		}
		var req struct {
			TimeScale *float64 `json:"time_scale" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "time_scale is required"})
			return
		}

		applied, err := a.SetTimeScale(*req.TimeScale)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		admin.LogAction(db, operatorFromContext(c), "set_time_scale", a.ID, map[string]interface{}{
			"requested": *req.TimeScale,
			"applied":   applied,
		})
		c.JSON(http.StatusOK, gin.H{"arena_id": a.ID, "time_scale": applied})
	}
}

// SetArenaRoster adjusts the per-team disc count
func SetArenaRoster(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := arenaFromQuery(c)
		if a == nil {
			return
		}
		var req struct {
			RosterSize *int `json:"roster_size" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roster_size is required"})
			return
		}

		applied, err := a.SetRosterSize(*req.RosterSize)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		admin.LogAction(db, operatorFromContext(c), "set_roster", a.ID, map[string]interface{}{
			"requested": *req.RosterSize,
			"applied":   applied,
		})
		c.JSON(http.StatusOK, gin.H{"arena_id": a.ID, "roster_size": applied})
	}
}

// ResizeArena rebuilds the grid for new board dimensions
func ResizeArena(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := arenaFromQuery(c)
		if a == nil {
			return
		}
		var req struct {
			Width  float64 `json:"width" binding:"required"`
			Height float64 `json:"height" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "width and height are required"})
			return
		}

		if err := a.Resize(req.Width, req.Height); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		admin.LogAction(db, operatorFromContext(c), "resize", a.ID, map[string]interface{}{
			"width":  req.Width,
			"height": req.Height,
		})
		c.JSON(http.StatusOK, gin.H{"arena_id": a.ID, "width": req.Width, "height": req.Height})
	}
}

// CloseArena shuts an arena down and records its final match
func CloseArena(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := arenaFromQuery(c)
		if a == nil {
			return
		}
		if err := game.Manager.CloseArena(a.ID, "operator"); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		admin.LogAction(db, operatorFromContext(c), "close_arena", a.ID, nil)
		c.JSON(http.StatusOK, gin.H{"arena_id": a.ID, "closed": true})
	}
}
