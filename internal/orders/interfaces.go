package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/pkg/db/models"
)

// Repository defines persistence operations for orders and the stock they consume.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	DecrementStock(ctx context.Context, tenantID, productID uuid.UUID, qty int) (bool, error)
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, tenantID uuid.UUID) ([]models.Order, error)
}
