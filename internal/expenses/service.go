package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/pkg/db/models"
	"github.com/lastros/pos-backend/pkg/enums"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
)

// Service manages the expense ledger.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, req CreateExpenseRequest) (*ExpenseDTO, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]ExpenseDTO, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type expenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]models.Expense, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type service struct {
	repo expenseRepository
	now  func() time.Time
}

func NewService(repo expenseRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expense repository required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, req CreateExpenseRequest) (*ExpenseDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant is required")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if req.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	category, err := enums.ParseExpenseCategory(req.Category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	date := s.now()
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.UTC()
	}
	expense := &models.Expense{
		TenantID:    tenantID,
		Description: description,
		Amount:      req.Amount.Round(2),
		Category:    category,
		Date:        date,
	}
	created, err := s.repo.Create(ctx, expense)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
	}
	return FromModel(created), nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]ExpenseDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant is required")
	}
	rows, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	out := make([]ExpenseDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expense")
	}
	return nil
}
