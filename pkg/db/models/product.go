package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable menu item with its on-hand stock.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index:idx_products_tenant_created,priority:1"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock     int             `gorm:"column:stock;not null;default:0;check:chk_products_stock_non_negative,stock >= 0"`
	ImageURL  *string         `gorm:"column:image_url"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_products_tenant_created,priority:2"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
