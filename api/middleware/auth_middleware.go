// api/middleware/auth_middleware.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/sqlprompt/config"
	"github.com/Annany2002/sqlprompt/internal/auth"
)

// SubjectKey is the gin context key holding the authenticated operator.
const SubjectKey = "subject"

// AuthMiddleware creates a gin middleware for checking JWT authentication.
// Failures are attached to the context and rendered by ErrorHandler.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			_ = c.Error(auth.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			_ = c.Error(auth.ErrTokenMalformed)
			c.Abort()
			return
		}

		subject, err := auth.ValidateJWT(parts[1], cfg.JWTSecret)
		if err != nil {
			customLog.Printf("AuthMiddleware: Token validation failed: %v", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(SubjectKey, subject)
		c.Next()
	}
}
