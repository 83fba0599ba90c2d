package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lastros/pos-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	Role     enums.UserRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
// The subject claim carries the user id as well for older clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	TenantID uuid.UUID      `json:"tenant_id"`
	Email    string         `json:"email,omitempty"`
	Role     enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
