package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/enums"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
)

const dayLayout = "2006-01-02"

// Service computes the headline numbers for the dashboard, finance and kitchen screens.
type Service interface {
	Summary(ctx context.Context, tenantID uuid.UUID, day string) (*SummaryDTO, error)
	Finance(ctx context.Context, tenantID uuid.UUID) (*FinanceDTO, error)
	Kitchen(ctx context.Context, tenantID uuid.UUID) (*KitchenDTO, error)
}

type SummaryDTO struct {
	Date            string          `json:"date"`
	SalesToday      decimal.Decimal `json:"sales_today"`
	OrdersToday     int64           `json:"orders_today"`
	OpenOrders      int64           `json:"open_orders"`
	AverageTicket   decimal.Decimal `json:"average_ticket"`
	EstimatedProfit decimal.Decimal `json:"estimated_profit"`
}

type FinanceDTO struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

type KitchenDTO struct {
	Pending   int64 `json:"pending"`
	Preparing int64 `json:"preparing"`
	Ready     int64 `json:"ready"`
}

type statsRepository interface {
	Sales(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, int64, error)
	Revenue(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
	Expenses(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[enums.OrderStatus]int64, error)
}

type service struct {
	repo     statsRepository
	margin   decimal.Decimal
	location *time.Location
	now      func() time.Time
}

// NewService builds the dashboard service. Day boundaries follow cfg.Timezone.
func NewService(repo statsRepository, cfg config.DashboardConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	margin, err := cfg.Margin()
	if err != nil {
		return nil, err
	}
	location := time.UTC
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		location, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("dashboard timezone %q: %w", tz, err)
		}
	}
	return &service{repo: repo, margin: margin, location: location, now: time.Now}, nil
}

func (s *service) Summary(ctx context.Context, tenantID uuid.UUID, day string) (*SummaryDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant is required")
	}
	from, err := s.dayStart(day)
	if err != nil {
		return nil, err
	}
	to := from.AddDate(0, 0, 1)

	sales, count, err := s.repo.Sales(ctx, tenantID, from.UTC(), to.UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum sales")
	}
	statuses, err := s.repo.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}

	var open int64
	for status, n := range statuses {
		if status.IsOpen() {
			open += n
		}
	}
	average := decimal.Zero
	if count > 0 {
		average = sales.Div(decimal.NewFromInt(count)).Round(2)
	}
	return &SummaryDTO{
		Date:            from.Format(dayLayout),
		SalesToday:      sales.Round(2),
		OrdersToday:     count,
		OpenOrders:      open,
		AverageTicket:   average,
		EstimatedProfit: sales.Mul(s.margin).Round(2),
	}, nil
}

func (s *service) Finance(ctx context.Context, tenantID uuid.UUID) (*FinanceDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant is required")
	}
	revenue, err := s.repo.Revenue(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	expenses, err := s.repo.Expenses(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum expenses")
	}
	return &FinanceDTO{
		Revenue:  revenue.Round(2),
		Expenses: expenses.Round(2),
		Balance:  revenue.Sub(expenses).Round(2),
	}, nil
}

func (s *service) Kitchen(ctx context.Context, tenantID uuid.UUID) (*KitchenDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant is required")
	}
	statuses, err := s.repo.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	return &KitchenDTO{
		Pending:   statuses[enums.OrderStatusPending],
		Preparing: statuses[enums.OrderStatusPreparing],
		Ready:     statuses[enums.OrderStatusReady],
	}, nil
}

// dayStart returns midnight of day in the service location. An empty day means today.
func (s *service) dayStart(day string) (time.Time, error) {
	day = strings.TrimSpace(day)
	if day == "" {
		now := s.now().In(s.location)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location), nil
	}
	parsed, err := time.ParseInLocation(dayLayout, day, s.location)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted as YYYY-MM-DD")
	}
	return parsed, nil
}
