package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/hexclash/backend/internal/admin"
	"github.com/hexclash/backend/internal/config"
	"github.com/hexclash/backend/internal/standings"
)

// GetStandings returns the all-time tally for both teams
func GetStandings(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := standings.GetStandings(db)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch standings: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch standings"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"standings": rows})
	}
}

// GetResults returns recorded matches, newest first, optionally filtered
// by arena
func GetResults(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := intQuery(c, "limit", 25)
		offset := intQuery(c, "offset", 0)
		if limit < 1 || limit > 200 {
			limit = 25
		}
		if offset < 0 {
			offset = 0
		}

		arenaID := c.Query("arena")
		var (
			rows interface{}
			err  error
		)
		if arenaID != "" {
			rows, err = standings.GetResultsByArena(db, arenaID, limit, offset)
		} else {
			rows, err = standings.GetRecentResults(db, limit, offset)
		}
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch results: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch results"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": rows, "limit": limit, "offset": offset})
	}
}

// GetAuditLogs returns paginated operator audit entries
func GetAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := intQuery(c, "limit", 25)
		offset := intQuery(c, "offset", 0)
		if limit < 1 || limit > 200 {
			limit = 25
		}
		if offset < 0 {
			offset = 0
		}

		operator := c.Query("operator")
		var (
			rows interface{}
			err  error
		)
		if operator != "" {
			rows, err = admin.GetAuditLogsByOperator(db, operator, limit, offset)
		} else {
			rows, err = admin.GetAuditLogs(db, limit, offset)
		}
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch audit logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit logs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": rows, "limit": limit, "offset": offset})
	}
}

// GetRuntimeConfig returns all runtime config entries
func GetRuntimeConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		configs, err := admin.GetAllRuntimeConfig(db)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch runtime config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch config"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"configs": configs})
	}
}

// UpdateRuntimeConfig updates a single runtime config value and re-applies
// the overrides to the in-memory config. New arenas pick the change up;
// running arenas keep their current parameters.
func UpdateRuntimeConfig(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := operatorFromContext(c)
		key := c.Param("key")

		var req struct {
			Value string `json:"value" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value is required"})
			return
		}

		if err := admin.UpdateRuntimeConfigValue(db, key, req.Value, operator); err != nil {
			log.Printf("[ADMIN] Failed to update config %s: %v", key, err)
			admin.LogAction(db, operator, "update_config", "", map[string]interface{}{"key": key, "value": req.Value, "success": false})
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
			log.Printf("[ADMIN] Warning: failed to re-apply runtime config: %v", err)
		}

		admin.LogAction(db, operator, "update_config", "", map[string]interface{}{"key": key, "value": req.Value, "success": true})
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
