package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lastros/pos-backend/pkg/enums"
)

// User is a restaurant operator able to sign in.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	TenantID     uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name         string         `gorm:"column:name;not null"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'USER'"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	Tenant       *Tenant        `gorm:"foreignKey:TenantID"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
