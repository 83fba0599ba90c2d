package auth

import (
	"github.com/google/uuid"

	"github.com/lastros/pos-backend/internal/users"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a USER account. Without TenantID the account joins
// the default restaurant.
type RegisterRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=6"`
	Name     string     `json:"name" validate:"required"`
	TenantID *uuid.UUID `json:"tenant_id,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	User         *users.UserDTO `json:"user"`
}
