package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hexclash/backend/internal/admin"
	"github.com/hexclash/backend/internal/api"
	"github.com/hexclash/backend/internal/config"
	"github.com/hexclash/backend/internal/database"
	"github.com/hexclash/backend/internal/game"
	"github.com/hexclash/backend/internal/migrations"
	"github.com/hexclash/backend/internal/notify"
	"github.com/hexclash/backend/internal/redis"
	"github.com/hexclash/backend/internal/standings"
	"github.com/hexclash/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	ctx := context.Background()

	// Initialize database
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Standings rows must exist before the first result lands
	if err := standings.EnsureRows(db); err != nil {
		log.Printf("[STANDINGS] Failed to seed team rows: %v", err)
	}

	// Apply DB-backed config overrides on top of environment defaults
	if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
		log.Printf("[CONFIG] Failed to apply runtime config: %v", err)
	}

	// Initialize Redis
	rdb, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Initialize the arena manager and the default arena
	game.InitializeManager(ctx, db, rdb, cfg)

	// Initialize result webhook client (if configured)
	if webhookClient := notify.NewClient(cfg); webhookClient != nil {
		notify.SetDefault(webhookClient)
		log.Printf("[NOTIFY] Result webhook client initialized (url=%s)", cfg.ResultWebhookURL)
	}

	// Start webhook delivery worker (drains PENDING deliveries)
	go notify.StartDeliveryWorker(ctx, db, cfg, cfg.WebhookPollSeconds)

	// Wire Redis into the WS layer and start the arena event subscriber
	ws.SetRedisClient(rdb, cfg)
	ws.StartArenaEventSubscriber(ctx)

	// Start the janitor that reaps idle arenas
	game.StartJanitor(ctx, rdb, cfg)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Frames and score updates fan out through the WS hub
	game.Manager.SetBroadcaster(ws.ArenaHub)

	// Initialize API handlers
	api.SetupRoutes(router, db, rdb, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting HexClash server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
