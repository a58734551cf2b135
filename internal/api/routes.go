package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/hexclash/backend/internal/api/handlers"
	"github.com/hexclash/backend/internal/config"
	"github.com/hexclash/backend/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	// No-cache middleware for development so the spectator UI never sees
	// stale board state
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", handlers.HealthCheck)

		// Frontend bootstrap values
		v1.GET("/config", handlers.GetConfig(cfg))

		// Operator login
		v1.POST("/auth/login", handlers.Login(db, cfg))

		// Spectator endpoints (no auth)
		v1.GET("/arenas", handlers.ListArenas())
		v1.GET("/standings", handlers.GetStandings(db))

		arena := v1.Group("/arena")
		{
			arena.GET("/state", handlers.GetArenaState())
			arena.GET("/score", handlers.GetArenaScore())
			arena.GET("/ws", handlers.HandleArenaWebSocket())
		}

		// Operator control surface
		control := v1.Group("/arena")
		control.Use(handlers.AuthMiddleware(cfg))
		{
			control.POST("/create", handlers.CreateArena(db, cfg))
			control.POST("/start", handlers.StartArena(db))
			control.POST("/stop", handlers.StopArena(db))
			control.POST("/reset", handlers.ResetArenaBoard(db))
			control.POST("/speed", handlers.SetArenaTimeScale(db))
			control.POST("/roster", handlers.SetArenaRoster(db))
			control.POST("/resize", handlers.ResizeArena(db))
			control.POST("/close", handlers.CloseArena(db))
		}

		// Reporting and administration
		adminGroup := v1.Group("/admin")
		adminGroup.Use(handlers.AuthMiddleware(cfg))
		{
			adminGroup.GET("/results", handlers.GetResults(db))
			adminGroup.GET("/audit", handlers.GetAuditLogs(db))
			adminGroup.GET("/config", handlers.GetRuntimeConfig(db))
			adminGroup.PUT("/config/:key", handlers.RequireAdmin(), handlers.UpdateRuntimeConfig(db, cfg))
		}
	}
}
