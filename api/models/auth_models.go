// api/models/auth_models.go
package models

import "github.com/golang-jwt/jwt/v5"

// RoleOperator is the only role tokens are issued for.
const RoleOperator = "operator"

// --- Auth Request/Response Structs ---

// LoginRequest defines the structure for the operator login request body
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse defines the structure for the login response body
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// --- JWT Claims ---

// CustomClaims adds a role to the standard claims. The operator name travels in Subject.
type CustomClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
