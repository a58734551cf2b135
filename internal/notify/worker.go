package notify

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hexclash/backend/internal/config"
	"github.com/hexclash/backend/internal/models"
)

// StartDeliveryWorker runs a background job that drains pending webhook
// deliveries from the database
func StartDeliveryWorker(ctx context.Context, db *sqlx.DB, cfg *config.Config, intervalSeconds int) {
	if intervalSeconds <= 0 {
		intervalSeconds = 60
	}
	ticker := time.NewTicker(time.Duration(intervalSeconds) * time.Second)
	defer ticker.Stop()

	log.Printf("[NOTIFY] Starting webhook delivery worker (poll every %ds)", intervalSeconds)

	// Run once immediately on startup
	deliverPending(ctx, db, cfg)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[NOTIFY] Delivery worker stopped")
			return
		case <-ticker.C:
			deliverPending(ctx, db, cfg)
		}
	}
}

func deliverPending(ctx context.Context, db *sqlx.DB, cfg *config.Config) {
	if Default == nil {
		log.Printf("[NOTIFY] Webhook client not initialized, skipping delivery run")
		return
	}

	maxAttempts := 5
	if cfg != nil && cfg.WebhookMaxAttempts > 0 {
		maxAttempts = cfg.WebhookMaxAttempts
	}

	var deliveries []struct {
		ID          int       `db:"id"`
		URL         string    `db:"url"`
		Attempts    int       `db:"attempts"`
		ResultID    int       `db:"result_id"`
		ArenaID     string    `db:"arena_id"`
		BoardWidth  float64   `db:"board_width"`
		BoardHeight float64   `db:"board_height"`
		RosterSize  int       `db:"roster_size"`
		WhitePoints int       `db:"white_points"`
		BlackPoints int       `db:"black_points"`
		Winner      string    `db:"winner"`
		EndReason   string    `db:"end_reason"`
		StartedAt   time.Time `db:"started_at"`
		EndedAt     time.Time `db:"ended_at"`
	}

	err := db.Select(&deliveries, `
		SELECT d.id, d.url, d.attempts,
		       r.id AS result_id, r.arena_id, r.board_width, r.board_height, r.roster_size,
		       r.white_points, r.black_points, r.winner, r.end_reason, r.started_at, r.ended_at
		FROM webhook_deliveries d
		JOIN match_results r ON d.result_id = r.id
		WHERE d.status = 'PENDING'
		ORDER BY d.created_at ASC
		LIMIT 50
	`)
	if err != nil {
		log.Printf("[NOTIFY] Failed to fetch pending deliveries: %v", err)
		return
	}
	if len(deliveries) == 0 {
		return
	}

	log.Printf("[NOTIFY] Delivering %d pending webhook(s)", len(deliveries))

	for _, d := range deliveries {
		payload := ResultPayload{
			ResultID:    d.ResultID,
			ArenaID:     d.ArenaID,
			BoardWidth:  d.BoardWidth,
			BoardHeight: d.BoardHeight,
			RosterSize:  d.RosterSize,
			WhitePoints: d.WhitePoints,
			BlackPoints: d.BlackPoints,
			Winner:      d.Winner,
			EndReason:   d.EndReason,
			StartedAt:   d.StartedAt,
			EndedAt:     d.EndedAt,
		}

		err := Default.Deliver(ctx, d.URL, payload)
		if err == nil {
			if _, uerr := db.Exec(`UPDATE webhook_deliveries SET status=$1, attempts=attempts+1, delivered_at=NOW(), last_error=NULL WHERE id=$2`,
				models.DeliveryDelivered, d.ID); uerr != nil {
				log.Printf("[NOTIFY] Failed to mark delivery %d delivered: %v", d.ID, uerr)
			}
			continue
		}

		attempts := d.Attempts + 1
		status := models.DeliveryPending
		if attempts >= maxAttempts {
			status = models.DeliveryFailed
			log.Printf("[NOTIFY] Delivery %d failed permanently after %d attempts: %v", d.ID, attempts, err)
		} else {
			log.Printf("[NOTIFY] Delivery %d attempt %d failed, will retry: %v", d.ID, attempts, err)
		}
		if _, uerr := db.Exec(`UPDATE webhook_deliveries SET status=$1, attempts=$2, last_error=$3 WHERE id=$4`,
			status, attempts, err.Error(), d.ID); uerr != nil {
			log.Printf("[NOTIFY] Failed to update delivery %d: %v", d.ID, uerr)
		}
	}
}
