package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/internal/repo"
	"github.com/lastros/pos-backend/pkg/db/models"
)

// Repository persists catalog items. Every read and write is tenant scoped.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// List returns the tenant's products, newest first.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.Tenant(ctx, tenantID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).
		Error
	return rows, err
}

// FindByID loads a product owned by tenantID.
func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.Tenant(ctx, tenantID).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update applies the column changes to the tenant's product. It returns
// gorm.ErrRecordNotFound when no row matched.
func (r *Repository) Update(ctx context.Context, tenantID, id uuid.UUID, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	res := r.Tenant(ctx, tenantID).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.Tenant(ctx, tenantID).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasSales reports whether any order line references the product.
func (r *Repository) HasSales(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.OrderItem{}).
		Where("product_id = ?", id).
		Limit(1).
		Count(&count).
		Error
	return count > 0, err
}

// ImageURLs returns every image URL referenced by a product, across tenants.
func (r *Repository) ImageURLs(ctx context.Context) ([]string, error) {
	var urls []string
	err := r.DB(ctx).
		Model(&models.Product{}).
		Where("image_url IS NOT NULL AND image_url <> ''").
		Pluck("image_url", &urls).
		Error
	return urls, err
}
