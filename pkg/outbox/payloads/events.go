package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderPlacedEvent is published once an order and its stock decrements commit.
type OrderPlacedEvent struct {
	OrderID       uuid.UUID         `json:"order_id"`
	TenantID      uuid.UUID         `json:"tenant_id"`
	CreatedBy     *uuid.UUID        `json:"created_by,omitempty"`
	Total         decimal.Decimal   `json:"total"`
	ComputedTotal decimal.Decimal   `json:"computed_total"`
	Items         []OrderPlacedLine `json:"items"`
	PlacedAt      time.Time         `json:"placed_at"`
}

type OrderPlacedLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}
