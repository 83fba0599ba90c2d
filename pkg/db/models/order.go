package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastros/pos-backend/pkg/enums"
)

// Order is a completed sale. It is written once together with its items.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index:idx_orders_tenant_created,priority:1"`
	Total     decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null;default:'COMPLETED'"`
	CreatedBy *uuid.UUID        `gorm:"column:created_by;type:uuid"`
	Items     []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime;index:idx_orders_tenant_created,priority:2"`
}

// OrderItem is one line of an order. Price is the unit price at sale time and
// Position keeps the submission order.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Position  int             `gorm:"column:position;not null;default:0"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// LineTotal returns price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
