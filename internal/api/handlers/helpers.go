package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hexclash/backend/internal/game"
)

// arenaFromQuery resolves the arena named by the `arena` query parameter,
// falling back to the default arena when it is absent. Writes a 404 and
// returns nil when no such arena exists.
func arenaFromQuery(c *gin.Context) *game.Arena {
	a, err := game.Manager.GetArena(c.Query("arena"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil
	}
	return a
}

// operatorFromContext returns the authenticated operator name, or "" when
// the route is not behind auth
func operatorFromContext(c *gin.Context) string {
	return c.GetString("operator")
}

// intQuery reads an integer query parameter with a fallback
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
