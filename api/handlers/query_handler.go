// api/handlers/query_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/sqlprompt/api/models"
	"github.com/Annany2002/sqlprompt/internal/service"
)

// QueryHandler serves the JSON prompt endpoints.
type QueryHandler struct {
	Service *service.Service
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(svc *service.Service) *QueryHandler {
	return &QueryHandler{Service: svc}
}

// Query handles POST /query.
func (h *QueryHandler) Query(c *gin.Context) {
	var req models.QueryRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.Service.Run(c.Request.Context(), req.Prompt, req.Connection.ToDomain())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// TestConnection handles POST /connection/test.
func (h *QueryHandler) TestConnection(c *gin.Context) {
	var req models.ConnectionTestRequest
	if !bindJSON(c, &req) {
		return
	}

	driver, tables, err := h.Service.Inspect(c.Request.Context(), req.Connection.ToDomain())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.ConnectionTestResponse{Driver: driver, Tables: tables})
}
