// api/handlers/ui_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/sqlprompt/api/models"
	"github.com/Annany2002/sqlprompt/internal/client"
	"github.com/Annany2002/sqlprompt/internal/domain"
	"github.com/Annany2002/sqlprompt/internal/service"
	"github.com/Annany2002/sqlprompt/internal/web"
)

// Querier is what the form page submits to. Error texts are shown as-is.
type Querier interface {
	Query(ctx context.Context, prompt string, conn domain.Connection) (*domain.Result, error)
	TestConnection(ctx context.Context, conn domain.Connection) (string, []domain.TableSchema, error)
}

var _ Querier = (*client.Client)(nil)

// LocalQuerier runs the pipeline in-process and renders errors like /query does.
type LocalQuerier struct {
	Service *service.Service
}

func (q LocalQuerier) Query(ctx context.Context, prompt string, conn domain.Connection) (*domain.Result, error) {
	result, err := q.Service.Run(ctx, prompt, conn)
	if err != nil {
		return nil, userError{err}
	}
	return result, nil
}

func (q LocalQuerier) TestConnection(ctx context.Context, conn domain.Connection) (string, []domain.TableSchema, error) {
	driver, tables, err := q.Service.Inspect(ctx, conn)
	if err != nil {
		return "", nil, userError{err}
	}
	return driver, tables, nil
}

type userError struct{ err error }

func (e userError) Error() string { return service.UserMessage(e.err) }
func (e userError) Unwrap() error { return e.err }

// UIHandler renders and handles the form page.
type UIHandler struct {
	Querier Querier
}

// NewUIHandler creates a new UIHandler.
func NewUIHandler(querier Querier) *UIHandler {
	return &UIHandler{Querier: querier}
}

// Index handles GET /.
func (h *UIHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, web.IndexTemplate, web.NewFormState())
}

// Submit handles POST / for the run, clear and test actions.
func (h *UIHandler) Submit(c *gin.Context) {
	var form models.FormRequest
	if err := c.ShouldBind(&form); err != nil {
		customLog.Warnf("UI form binding error: %v", err)
	}

	state := web.NewFormState()
	state.Prompt = form.Prompt
	state.Connection = form.Connection()
	if state.Connection.Driver == "" {
		state.Connection.Driver = web.NewFormState().Connection.Driver
	}

	switch form.Action {
	case "clear":
		state.Clear()
	case "test":
		driver, tables, err := h.Querier.TestConnection(c.Request.Context(), state.Connection)
		if err != nil {
			state.SetError(err.Error())
			break
		}
		if len(tables) == 0 {
			state.SetError("Connected to " + driver + ", but no tables were found.")
			break
		}
		state.Tables = tables
	default:
		if strings.TrimSpace(form.Prompt) == "" {
			state.SetError(client.ErrEmptyPrompt.Error())
			break
		}
		result, err := h.Querier.Query(c.Request.Context(), form.Prompt, state.Connection)
		if err != nil {
			state.SetError(err.Error())
			break
		}
		state.SetResult(result)
	}

	c.HTML(http.StatusOK, web.IndexTemplate, state)
}
