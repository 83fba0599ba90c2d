package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/internal/repo"
	"github.com/lastros/pos-backend/pkg/db/models"
)

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) FindProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.Tenant(ctx, tenantID).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock subtracts qty from the product's stock only when enough is
// on hand. It reports false when the guard rejected the update.
func (r *repository) DecrementStock(ctx context.Context, tenantID, productID uuid.UUID, qty int) (bool, error) {
	res := r.Tenant(ctx, tenantID).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CreateOrder inserts the order together with its items.
func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.Tenant(ctx, tenantID).
		Preload("Items", withItemOrder).
		Preload("Items.Product").
		First(&order, "id = ?", orderID).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the tenant's orders, most recent first.
func (r *repository) ListOrders(ctx context.Context, tenantID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.Tenant(ctx, tenantID).
		Preload("Items", withItemOrder).
		Preload("Items.Product").
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).
		Error
	return rows, err
}

func withItemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
