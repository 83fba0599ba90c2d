package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastros/pos-backend/pkg/enums"
)

// Expense is an outgoing payment recorded in the finance ledger.
type Expense struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	TenantID    uuid.UUID             `gorm:"column:tenant_id;type:uuid;not null;index:idx_expenses_tenant_date,priority:1"`
	Description string                `gorm:"column:description;not null"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Category    enums.ExpenseCategory `gorm:"column:category;type:text;not null"`
	Date        time.Time             `gorm:"column:date;not null;index:idx_expenses_tenant_date,priority:2"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
