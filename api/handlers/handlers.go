package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/sqlprompt/api/models"
	"github.com/Annany2002/sqlprompt/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// bindJSON decodes the body into obj, attaching a mapped error on failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		customLog.Warnf("%s %s binding error: %v", c.Request.Method, c.FullPath(), err)
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			_ = c.Error(err)
		} else {
			_ = c.Error(fmt.Errorf("%w: %v", models.ErrInvalidRequest, err))
		}
		return false
	}
	return true
}
