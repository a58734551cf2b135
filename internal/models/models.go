package models

import (
	"database/sql"
	"time"
)

// Match outcome values
const (
	WinnerWhite = "WHITE"
	WinnerBlack = "BLACK"
	WinnerDraw  = "DRAW"
)

// Match end reasons
const (
	EndReasonReset  = "RESET"
	EndReasonClosed = "CLOSED"
)

// Webhook delivery states
const (
	DeliveryPending   = "PENDING"
	DeliveryDelivered = "DELIVERED"
	DeliveryFailed    = "FAILED"
)

// Operator represents an account allowed to drive arenas
type Operator struct {
	ID           int          `db:"id" json:"id"`
	Username     string       `db:"username" json:"username"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Role         string       `db:"role" json:"role"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	LastLoginAt  sql.NullTime `db:"last_login_at" json:"last_login_at,omitempty"`
}

// MatchResult represents the final standings of one board, recorded when an
// arena resets or closes with points on the table
type MatchResult struct {
	ID          int       `db:"id" json:"id"`
	ArenaID     string    `db:"arena_id" json:"arena_id"`
	BoardWidth  float64   `db:"board_width" json:"board_width"`
	BoardHeight float64   `db:"board_height" json:"board_height"`
	RosterSize  int       `db:"roster_size" json:"roster_size"`
	WhitePoints int       `db:"white_points" json:"white_points"`
	BlackPoints int       `db:"black_points" json:"black_points"`
	Winner      string    `db:"winner" json:"winner"`         // WHITE, BLACK or DRAW
	EndReason   string    `db:"end_reason" json:"end_reason"` // RESET or CLOSED
	StartedAt   time.Time `db:"started_at" json:"started_at"`
	EndedAt     time.Time `db:"ended_at" json:"ended_at"`
}

// TeamStanding represents a team's cumulative tally across recorded matches
type TeamStanding struct {
	Team          string    `db:"team" json:"team"`
	MatchesPlayed int       `db:"matches_played" json:"matches_played"`
	MatchesWon    int       `db:"matches_won" json:"matches_won"`
	TotalPoints   int       `db:"total_points" json:"total_points"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// AuditLog represents one operator action on the control surface
type AuditLog struct {
	ID        int            `db:"id" json:"id"`
	Operator  string         `db:"operator" json:"operator"`
	Action    string         `db:"action" json:"action"`
	ArenaID   sql.NullString `db:"arena_id" json:"arena_id,omitempty"`
	Detail    string         `db:"detail" json:"detail,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// RuntimeConfig represents a tunable default stored in the database so
// operators can adjust it without a redeploy
type RuntimeConfig struct {
	Key         string         `db:"key" json:"key"`
	Value       string         `db:"value" json:"value"`
	ValueType   string         `db:"value_type" json:"value_type"` // int, float, bool or string
	Description string         `db:"description" json:"description"`
	UpdatedBy   sql.NullString `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// WebhookDelivery represents an outbound match-result notification and its
// delivery state
type WebhookDelivery struct {
	ID          int            `db:"id" json:"id"`
	ResultID    int            `db:"result_id" json:"result_id"`
	URL         string         `db:"url" json:"url"`
	Status      string         `db:"status" json:"status"` // PENDING, DELIVERED or FAILED
	Attempts    int            `db:"attempts" json:"attempts"`
	LastError   sql.NullString `db:"last_error" json:"last_error,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	DeliveredAt sql.NullTime   `db:"delivered_at" json:"delivered_at,omitempty"`
}
