package expenses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastros/pos-backend/pkg/db/models"
	"github.com/lastros/pos-backend/pkg/enums"
)

// CreateExpenseRequest is the POST /expenses body. Date defaults to now.
type CreateExpenseRequest struct {
	Description string          `json:"description" validate:"required,max=255"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" validate:"required"`
	Date        *time.Time      `json:"date"`
}

type ExpenseDTO struct {
	ID          uuid.UUID             `json:"id"`
	TenantID    uuid.UUID             `json:"tenant_id"`
	Description string                `json:"description"`
	Amount      decimal.Decimal       `json:"amount"`
	Category    enums.ExpenseCategory `json:"category"`
	Date        time.Time             `json:"date"`
	CreatedAt   time.Time             `json:"created_at"`
}

func FromModel(e *models.Expense) *ExpenseDTO {
	if e == nil {
		return nil
	}
	return &ExpenseDTO{
		ID:          e.ID,
		TenantID:    e.TenantID,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	}
}
