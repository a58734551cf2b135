package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hexclash/backend/internal/config"
)

// StartJanitor starts a background worker that closes arenas whose idle
// deadline has passed, using a Redis sorted set as the schedule.
func StartJanitor(ctx context.Context, rdb *redis.Client, cfg *config.Config) {
	if rdb == nil || cfg == nil {
		log.Println("[JANITOR] Redis or config missing; janitor not started")
		return
	}

	poll := cfg.JanitorPollSeconds
	if poll <= 0 {
		poll = 30
	}

	log.Println("[JANITOR] Arena janitor started")
	go func() {
		ticker := time.NewTicker(time.Duration(poll) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[JANITOR] Arena janitor stopping")
				return
			case <-ticker.C:
				now := time.Now().Unix()

				members, err := rdb.ZRangeByScore(ctx, arenaIdleKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now)}).Result()
				if err != nil {
					log.Printf("[JANITOR] Failed to fetch idle arenas: %v", err)
					continue
				}

				for _, id := range members {
					// Attempt to remove (race-safe across instances)
					if removed, _ := rdb.ZRem(ctx, arenaIdleKey, id).Result(); removed == 0 {
						continue
					}
					if id == DefaultArenaID {
						continue
					}
					a, err := Manager.GetArena(id)
					if err != nil {
						continue
					}
					if a.SpectatorCount() > 0 {
						// Still being watched; push the deadline forward
						log.Printf("[JANITOR] Arena %s still has spectators; deadline extended", id)
						Manager.touchArena(id)
						continue
					}
					log.Printf("[JANITOR] Closing idle arena %s", id)
					if err := Manager.CloseArena(id, "idle"); err != nil {
						log.Printf("[JANITOR] Failed to close arena %s: %v", id, err)
					}
				}
			}
		}
	}()
}
