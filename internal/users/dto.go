package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lastros/pos-backend/pkg/db/models"
	"github.com/lastros/pos-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	TenantID    uuid.UUID      `json:"tenant_id"`
	Role        enums.UserRole `json:"role"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type CreateUserDTO struct {
	TenantID     uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         enums.UserRole
}

// ProfilePatch carries optional profile changes. PasswordHash is already hashed.
type ProfilePatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		TenantID:    u.TenantID,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if !role.IsValid() {
		role = enums.UserRoleUser
	}
	return &models.User{
		TenantID:     c.TenantID,
		Email:        NormalizeEmail(c.Email),
		Name:         strings.TrimSpace(c.Name),
		PasswordHash: c.PasswordHash,
		Role:         role,
	}
}
