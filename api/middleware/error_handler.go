// api/middleware/error_handler.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/sqlprompt/api/models"
	"github.com/Annany2002/sqlprompt/internal/auth"
	"github.com/Annany2002/sqlprompt/internal/dialect"
	"github.com/Annany2002/sqlprompt/internal/logger"
	"github.com/Annany2002/sqlprompt/internal/service"
	"github.com/Annany2002/sqlprompt/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

// ErrorHandler creates a Gin middleware for centralized error handling.
// Every error response has the shape {"error": "<message>"}.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// Only the last attached error decides the response.
		err := c.Errors.Last().Err
		customLog.Printf("[ErrorHandler] Detected error: %v | Type: %T", logger.Mask(err.Error()), err)

		statusCode, userMessage := mapError(err)

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, gin.H{"error": userMessage})
		} else {
			customLog.Warnln("[ErrorHandler] Response already written before handling error.")
		}
	}
}

func mapError(err error) (int, string) {
	var validationErrs validator.ValidationErrors
	var schemaErr *service.SchemaError

	switch {
	case errors.As(err, &validationErrs):
		details := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
		return http.StatusBadRequest, "Validation failed: " + strings.Join(details, "; ")
	case errors.Is(err, models.ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request body."
	case errors.Is(err, models.ErrInvalidParams):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), models.ErrInvalidParams.Error()+": ")
	case errors.Is(err, service.ErrMissingInput),
		errors.Is(err, dialect.ErrInvalidConnection),
		errors.Is(err, dialect.ErrUnsupportedDriver):
		return http.StatusBadRequest, service.UserMessage(err)
	case errors.As(err, &schemaErr), errors.Is(err, storage.ErrQueryFailed):
		return http.StatusUnprocessableEntity, service.UserMessage(err)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, service.UserMessage(err)
	case errors.Is(err, service.ErrTranslate), errors.Is(err, storage.ErrTargetUnavailable):
		return http.StatusBadGateway, service.UserMessage(err)
	case errors.Is(err, storage.ErrHistoryNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "Authentication token has expired."
	case errors.Is(err, auth.ErrTokenMalformed),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenClaimsInvalid),
		errors.Is(err, auth.ErrUnexpectedSigningMethod),
		errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid or malformed authentication token."
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials."
	case errors.Is(err, auth.ErrLoginDisabled):
		return http.StatusServiceUnavailable, "Operator login is not configured."
	default:
		customLog.Warnf("Unhandled error type: %T, Error: %v", err, logger.Mask(err.Error()))
		return http.StatusInternalServerError, service.UserMessage(err)
	}
}
