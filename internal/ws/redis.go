package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/hexclash/backend/internal/config"
)

var rdbClient *redis.Client
var wsConfig *config.Config

// SetRedisClient wires the Redis client and config into the WS layer.
func SetRedisClient(r *redis.Client, cfg *config.Config) {
	rdbClient = r
	wsConfig = cfg
}

// StartArenaEventSubscriber subscribes to the arena_events channel and relays
// lifecycle events to the affected arena rooms. Events travel through Redis
// so every instance can fan them out to its own spectators.
func StartArenaEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; arena event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, "arena_events")
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] arena_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}

			typeStr, _ := payload["type"].(string)
			arenaID, _ := payload["arena_id"].(string)
			if arenaID == "" {
				log.Printf("[WS] event %s missing arena_id", typeStr)
				continue
			}

			switch typeStr {
			case "arena_closed":
				if n := ArenaHub.RoomSize(arenaID); n > 0 {
					log.Printf("[WS] broadcasting arena_closed to arena %s (room_size=%d)", arenaID, n)
				}
				ArenaHub.BroadcastToArena(arenaID, map[string]interface{}{
					"type":     "arena_closed",
					"arena_id": arenaID,
					"reason":   payload["reason"],
				})

			case "match_recorded":
				ArenaHub.BroadcastToArena(arenaID, map[string]interface{}{
					"type":         "match_recorded",
					"arena_id":     arenaID,
					"result_id":    payload["result_id"],
					"winner":       payload["winner"],
					"points_white": payload["points_white"],
					"points_black": payload["points_black"],
				})

			case "arena_created":
				// No spectators can be in the room yet
				log.Printf("[WS] arena %s created", arenaID)

			default:
				log.Printf("[WS] unknown event type: %s", typeStr)
			}
		}
	}()
}
