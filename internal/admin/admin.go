package admin

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/hexclash/backend/internal/models"
)

// Operator roles
const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// GetOperator retrieves an operator account by username
func GetOperator(db *sqlx.DB, username string) (*models.Operator, error) {
	var op models.Operator
	err := db.Get(&op, `SELECT id, username, password_hash, role, is_active, created_at, last_login_at FROM operators WHERE username=$1`, username)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func VerifyPassword(passwordHash, plain string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(plain))
	return err == nil
}

// CreateOperator creates or updates an operator account (used for seeding)
func CreateOperator(db *sqlx.DB, username, password, role string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO operators (username, password_hash, role, is_active, created_at)
		VALUES ($1, $2, $3, TRUE, NOW())
		ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			is_active = TRUE
	`, username, string(hashed), role)

	return err
}

// ValidateCredentials validates a username and password pair and stamps the
// login time on success
func ValidateCredentials(db *sqlx.DB, username, password string) (*models.Operator, error) {
	op, err := GetOperator(db, username)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("[AUTH] No operator account found for username: %s", username)
			return nil, fmt.Errorf("operator account not found")
		}
		log.Printf("[AUTH] Database error: %v", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !op.IsActive {
		log.Printf("[AUTH] Operator account %s is disabled", username)
		return nil, fmt.Errorf("operator account disabled")
	}

	if !VerifyPassword(op.PasswordHash, password) {
		log.Printf("[AUTH] Password verification failed for username: %s", username)
		return nil, fmt.Errorf("invalid credentials")
	}

	if _, err := db.Exec(`UPDATE operators SET last_login_at=NOW() WHERE id=$1`, op.ID); err != nil {
		log.Printf("[AUTH] Failed to stamp last login for %s: %v", username, err)
	}

	return op, nil
}

// LogAction records an operator action in the audit log
func LogAction(db *sqlx.DB, operator, action, arenaID string, detail map[string]interface{}) error {
	if detail == nil {
		detail = map[string]interface{}{}
	}
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		log.Printf("Failed to marshal audit detail: %v", err)
		detailJSON = []byte("{}")
	}

	arena := sql.NullString{String: arenaID, Valid: arenaID != ""}
	_, err = db.Exec(`
		INSERT INTO audit_log (operator, action, arena_id, detail, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, operator, action, arena, string(detailJSON))

	if err != nil {
		log.Printf("Failed to log operator action: %v", err)
	}

	return err
}

// GetAuditLogs retrieves recent audit entries with pagination
func GetAuditLogs(db *sqlx.DB, limit, offset int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	query := `
		SELECT id, operator, action, arena_id, detail, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	err := db.Select(&logs, query, limit, offset)
	return logs, err
}

// GetAuditLogsByOperator retrieves audit entries for a specific operator
func GetAuditLogsByOperator(db *sqlx.DB, operator string, limit, offset int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	query := `
		SELECT id, operator, action, arena_id, detail, created_at
		FROM audit_log
		WHERE operator = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	err := db.Select(&logs, query, operator, limit, offset)
	return logs, err
}
