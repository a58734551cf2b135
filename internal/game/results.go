package game

import (
	"log"

	"github.com/hexclash/backend/internal/models"
	"github.com/hexclash/backend/internal/standings"
)

// recordResult persists a finished match: one ledger row, the standings
// update and a webhook enqueue, all in a single transaction. It runs on its
// own goroutine; failures are logged and the match data is dropped.
func (gm *ArenaManager) recordResult(res *models.MatchResult) {
	if res == nil {
		return
	}
	if gm.db == nil {
		log.Printf("[RESULT] DB missing; dropping result for arena %s (%d-%d)", res.ArenaID, res.WhitePoints, res.BlackPoints)
		return
	}

	tx, err := gm.db.Beginx()
	if err != nil {
		log.Printf("[RESULT] Failed to begin transaction: %v", err)
		return
	}
	defer tx.Rollback()

	var resultID int
	err = tx.QueryRowx(`INSERT INTO match_results
		(arena_id, board_width, board_height, roster_size, white_points, black_points, winner, end_reason, started_at, ended_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
		res.ArenaID, res.BoardWidth, res.BoardHeight, res.RosterSize,
		res.WhitePoints, res.BlackPoints, res.Winner, res.EndReason,
		res.StartedAt, res.EndedAt).Scan(&resultID)
	if err != nil {
		log.Printf("[RESULT] Failed to insert match result: %v", err)
		return
	}

	if err := standings.Apply(tx, res); err != nil {
		log.Printf("[RESULT] Failed to update standings: %v", err)
		return
	}

	webhookURL := ""
	if gm.config != nil {
		webhookURL = gm.config.ResultWebhookURL
	}
	if webhookURL != "" {
		if _, err := tx.Exec(`INSERT INTO webhook_deliveries (result_id, url, status, attempts, created_at)
			VALUES ($1,$2,$3,0,NOW())`, resultID, webhookURL, models.DeliveryPending); err != nil {
			log.Printf("[RESULT] Failed to enqueue webhook delivery: %v", err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[RESULT] Failed to commit result: %v", err)
		return
	}

	log.Printf("[RESULT] Match recorded: arena=%s result=%d winner=%s score=%d-%d reason=%s",
		res.ArenaID, resultID, res.Winner, res.WhitePoints, res.BlackPoints, res.EndReason)

	gm.publishEvent(map[string]interface{}{
		"type":         "match_recorded",
		"arena_id":     res.ArenaID,
		"result_id":    resultID,
		"winner":       res.Winner,
		"points_white": res.WhitePoints,
		"points_black": res.BlackPoints,
	})
}
