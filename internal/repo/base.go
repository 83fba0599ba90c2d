package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by repositories to share the connection and tenant scoping.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx. A nil ctx returns the raw connection.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Tenant returns a session restricted to rows of tenantID.
func (b Base) Tenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return b.DB(ctx).Scopes(TenantScope(tenantID))
}

// TenantScope filters on the tenant_id column. Use it on transactions too.
func TenantScope(tenantID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}
