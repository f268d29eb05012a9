package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	DB *sql.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{DB: db}
}

// Ping handles GET /ping.
func (h *HealthHandler) Ping(c *gin.Context) {
	if err := h.DB.PingContext(c.Request.Context()); err != nil {
		customLog.Warnf("Ping: history database unreachable: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "pong", "history": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pong", "history": "ok"})
}
