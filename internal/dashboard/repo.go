package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/internal/repo"
	"github.com/lastros/pos-backend/pkg/db/models"
	"github.com/lastros/pos-backend/pkg/enums"
)

// Repository runs the aggregate queries behind the dashboard cards.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

type sumAggregate struct {
	Total decimal.Decimal `gorm:"column:total"`
}

type salesAggregate struct {
	Total decimal.Decimal `gorm:"column:total"`
	Count int64           `gorm:"column:count"`
}

type statusCount struct {
	Status enums.OrderStatus `gorm:"column:status"`
	Count  int64             `gorm:"column:count"`
}

// Sales sums order totals created in [from, to).
func (r *Repository) Sales(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, int64, error) {
	var agg salesAggregate
	err := r.Tenant(ctx, tenantID).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS total, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&agg).
		Error
	return agg.Total, agg.Count, err
}

// Revenue sums every order total of the tenant.
func (r *Repository) Revenue(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	var agg sumAggregate
	err := r.Tenant(ctx, tenantID).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Scan(&agg).
		Error
	return agg.Total, err
}

// Expenses sums every expense amount of the tenant.
func (r *Repository) Expenses(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	var agg sumAggregate
	err := r.Tenant(ctx, tenantID).
		Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&agg).
		Error
	return agg.Total, err
}

// CountByStatus returns the number of orders per status.
func (r *Repository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[enums.OrderStatus]int64, error) {
	var rows []statusCount
	err := r.Tenant(ctx, tenantID).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
