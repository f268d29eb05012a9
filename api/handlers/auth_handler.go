// api/handlers/auth_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/sqlprompt/api/models"
	"github.com/Annany2002/sqlprompt/config"
	"github.com/Annany2002/sqlprompt/internal/auth"
)

// operatorSubject is the JWT subject issued to the single operator account.
const operatorSubject = "operator"

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler with dependencies.
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

// Login checks the operator password and issues a JWT on success.
func (h *AuthHandler) Login(c *gin.Context) {
	if h.Cfg.AdminPasswordHash == "" {
		_ = c.Error(auth.ErrLoginDisabled)
		return
	}

	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	if !auth.CheckPasswordHash(req.Password, h.Cfg.AdminPasswordHash) {
		customLog.Warnf("Login attempt failed from %s: invalid password", c.ClientIP())
		_ = c.Error(auth.ErrInvalidCredentials)
		return
	}

	tokenString, err := auth.GenerateJWT(operatorSubject, h.Cfg.JWTSecret, h.Cfg.JWTExpiration)
	if err != nil {
		customLog.Warnf("Failed to generate JWT: %v", err)
		_ = c.Error(err)
		return
	}

	customLog.Printf("Operator logged in from %s", c.ClientIP())
	c.JSON(http.StatusOK, models.LoginResponse{Message: "Logged in successfully", Token: tokenString})
}
