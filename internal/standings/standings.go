package standings

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/hexclash/backend/internal/models"
)

// team row keys in team_standings
const (
	TeamWhite = "WHITE"
	TeamBlack = "BLACK"
)

// EnsureRows makes sure both team rows exist. The migration seeds them, so
// this is only needed for databases created before that seed.
func EnsureRows(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	_, err := db.Exec(`INSERT INTO team_standings (team) VALUES ($1), ($2) ON CONFLICT (team) DO NOTHING`, TeamWhite, TeamBlack)
	return err
}

// Apply folds one match result into both team tallies within an existing tx.
// It selects both rows FOR UPDATE, bumps played/won counters and adds each
// team's points to its running total.
func Apply(tx *sqlx.Tx, result *models.MatchResult) error {
	if tx == nil {
		return fmt.Errorf("tx is nil")
	}
	if result == nil {
		return fmt.Errorf("result is nil")
	}

	// Lock both rows in a fixed order to avoid deadlocks between writers
	var rows []models.TeamStanding
	query := `SELECT team, matches_played, matches_won, total_points, updated_at FROM team_standings WHERE team IN ($1,$2) ORDER BY team FOR UPDATE`
	if err := tx.Select(&rows, query, TeamBlack, TeamWhite); err != nil {
		return err
	}
	if len(rows) != 2 {
		return fmt.Errorf("team standings rows missing (got %d)", len(rows))
	}

	for _, team := range []string{TeamWhite, TeamBlack} {
		points := result.WhitePoints
		if team == TeamBlack {
			points = result.BlackPoints
		}
		won := 0
		if result.Winner == team {
			won = 1
		}
		if _, err := tx.Exec(`UPDATE team_standings SET
			matches_played = matches_played + 1,
			matches_won = matches_won + $1,
			total_points = total_points + $2,
			updated_at = NOW()
			WHERE team = $3`, won, points, team); err != nil {
			return err
		}
	}

	log.Printf("[STANDINGS] Applied result: winner=%s white=%d black=%d", result.Winner, result.WhitePoints, result.BlackPoints)
	return nil
}

// GetStandings returns both team tallies.
func GetStandings(db *sqlx.DB) ([]models.TeamStanding, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	var rows []models.TeamStanding
	err := db.Select(&rows, `SELECT team, matches_played, matches_won, total_points, updated_at FROM team_standings ORDER BY team DESC`)
	return rows, err
}

// GetRecentResults returns recorded matches, newest first, with pagination.
func GetRecentResults(db *sqlx.DB, limit, offset int) ([]models.MatchResult, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	var rows []models.MatchResult
	query := `
		SELECT id, arena_id, board_width, board_height, roster_size, white_points, black_points, winner, end_reason, started_at, ended_at
		FROM match_results
		ORDER BY ended_at DESC
		LIMIT $1 OFFSET $2
	`
	err := db.Select(&rows, query, limit, offset)
	return rows, err
}

// GetResultsByArena returns recorded matches for one arena, newest first.
func GetResultsByArena(db *sqlx.DB, arenaID string, limit, offset int) ([]models.MatchResult, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	var rows []models.MatchResult
	query := `
		SELECT id, arena_id, board_width, board_height, roster_size, white_points, black_points, winner, end_reason, started_at, ended_at
		FROM match_results
		WHERE arena_id = $1
		ORDER BY ended_at DESC
		LIMIT $2 OFFSET $3
	`
	err := db.Select(&rows, query, arenaID, limit, offset)
	return rows, err
}
