// api/handlers/history_handler.go
package handlers

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Annany2002/sqlprompt/api/middleware"
	"github.com/Annany2002/sqlprompt/api/models"
	"github.com/Annany2002/sqlprompt/internal/core"
	"github.com/Annany2002/sqlprompt/internal/storage"
)

// HistoryHandler exposes recorded /query runs to the operator.
type HistoryHandler struct {
	DB *sql.DB
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(db *sql.DB) *HistoryHandler {
	return &HistoryHandler{DB: db}
}

// ListHistory handles GET /api/v1/history.
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	opts, err := core.ParseListQueryOptions(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", models.ErrInvalidParams, err))
		return
	}

	entries, err := storage.ListHistory(c.Request.Context(), h.DB, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("History: %s listed %d entries", c.GetString(middleware.SubjectKey), len(entries))
	c.JSON(http.StatusOK, models.HistoryListResponse{Entries: entries, Limit: opts.Limit, Offset: opts.Offset})
}

// GetHistory handles GET /api/v1/history/:id.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	id, ok := historyID(c)
	if !ok {
		return
	}

	entry, err := storage.GetHistory(c.Request.Context(), h.DB, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteHistory handles DELETE /api/v1/history/:id.
func (h *HistoryHandler) DeleteHistory(c *gin.Context) {
	id, ok := historyID(c)
	if !ok {
		return
	}

	if err := storage.DeleteHistory(c.Request.Context(), h.DB, id); err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("History: %s deleted entry %s", c.GetString(middleware.SubjectKey), id)
	c.Status(http.StatusNoContent)
}

func historyID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		_ = c.Error(fmt.Errorf("%w: invalid history id '%s'", models.ErrInvalidParams, id))
		return "", false
	}
	return id, true
}
