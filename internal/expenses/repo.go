package expenses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/internal/repo"
	"github.com/lastros/pos-backend/pkg/db/models"
)

// Repository persists ledger entries.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	if err := r.DB(ctx).Create(expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

// List returns the tenant's expenses, most recent date first.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]models.Expense, error) {
	var rows []models.Expense
	err := r.Tenant(ctx, tenantID).
		Order("date DESC").
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// Delete removes the expense. It returns gorm.ErrRecordNotFound when the row
// does not exist for the tenant.
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.Tenant(ctx, tenantID).Where("id = ?", id).Delete(&models.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
