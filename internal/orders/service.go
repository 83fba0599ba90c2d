package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/pkg/db/models"
	"github.com/lastros/pos-backend/pkg/enums"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
	"github.com/lastros/pos-backend/pkg/logger"
	"github.com/lastros/pos-backend/pkg/metrics"
	"github.com/lastros/pos-backend/pkg/outbox"
	"github.com/lastros/pos-backend/pkg/outbox/payloads"
)

const productNotFoundMessage = "product not found"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service places and lists sales.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error)
	ListOrders(ctx context.Context, tenantID uuid.UUID) ([]OrderDTO, error)
}

// PlaceOrderInput is a checkout submitted by a cashier.
type PlaceOrderInput struct {
	TenantID    uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   string
	Items       []LineItemInput
	Total       decimal.Decimal
}

// LineItemInput is one cart line. ProductID is kept as text so that
// malformed references surface as a missing product.
type LineItemInput struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// ServiceParams bundles the order service dependencies. Outbox and Metrics
// are optional.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Outbox  outboxPublisher
	Metrics *metrics.OrderMetrics
	Logger  *logger.Logger
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// PlaceOrder validates and decrements stock for every line in submission
// order, then writes the order, its items and an order.placed event. Any
// failure rolls the whole transaction back.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	if err := validatePlaceOrder(input); err != nil {
		s.metrics.IncRejected(string(pkgerrors.CodeValidation))
		return nil, err
	}
	ctx = s.logg.WithTenantID(ctx, input.TenantID.String())

	computed := computeTotal(input.Items)
	var placed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order := &models.Order{
			TenantID: input.TenantID,
			Total:    input.Total,
			Status:   enums.OrderStatusCompleted,
			Items:    make([]models.OrderItem, 0, len(input.Items)),
		}
		if input.ActorUserID != uuid.Nil {
			actor := input.ActorUserID
			order.CreatedBy = &actor
		}

		for i, item := range input.Items {
			productID, err := reserveLine(ctx, repo, input.TenantID, item)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID: productID,
				Position:  i,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}

		created, err := repo.CreateOrder(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := s.emitPlaced(ctx, tx, input, created, computed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order event")
		}

		placed, err = repo.FindOrder(ctx, input.TenantID, created.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		typed := pkgerrors.As(err)
		if typed == nil {
			typed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
		}
		s.metrics.IncRejected(string(typed.Code()))
		if typed.Code() == pkgerrors.CodeDependency {
			s.logg.Error(ctx, "order.place_failed", err)
		} else {
			s.logg.Info(s.logg.WithField(ctx, "reason", string(typed.Code())), "order.rejected")
		}
		return nil, typed
	}

	dto := FromModel(placed)
	if !computed.Equal(input.Total) {
		dto.TotalMismatch = true
		s.metrics.IncTotalMismatch()
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_id":       placed.ID.String(),
			"declared_total": input.Total.String(),
			"computed_total": computed.String(),
		}), "order.total_mismatch")
	}
	s.metrics.IncPlaced(input.Total)
	s.logg.Info(s.logg.WithField(ctx, "order_id", placed.ID.String()), "order.placed")
	return dto, nil
}

func (s *service) ListOrders(ctx context.Context, tenantID uuid.UUID) ([]OrderDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant is required")
	}
	rows, err := s.repo.ListOrders(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// reserveLine loads the product and takes qty units off its stock.
func reserveLine(ctx context.Context, repo Repository, tenantID uuid.UUID, item LineItemInput) (uuid.UUID, error) {
	productID, err := uuid.Parse(strings.TrimSpace(item.ProductID))
	if err != nil {
		return uuid.Nil, productNotFound(item.ProductID)
	}
	product, err := repo.FindProduct(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, productNotFound(item.ProductID)
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	ok, err := repo.DecrementStock(ctx, tenantID, productID, item.Quantity)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	if !ok {
		return uuid.Nil, pkgerrors.New(
			pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("insufficient stock: %s only has %d", product.Name, product.Stock),
		).WithDetails(map[string]any{
			"product_id":   product.ID,
			"product_name": product.Name,
			"available":    product.Stock,
			"requested":    item.Quantity,
		})
	}
	return productID, nil
}

func (s *service) emitPlaced(ctx context.Context, tx *gorm.DB, input PlaceOrderInput, order *models.Order, computed decimal.Decimal) error {
	if s.outbox == nil {
		return nil
	}
	lines := make([]payloads.OrderPlacedLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, payloads.OrderPlacedLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	var actor *outbox.ActorRef
	if input.ActorUserID != uuid.Nil {
		actor = &outbox.ActorRef{UserID: input.ActorUserID, TenantID: input.TenantID, Role: input.ActorRole}
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.OrderPlacedEvent{
			OrderID:       order.ID,
			TenantID:      order.TenantID,
			CreatedBy:     order.CreatedBy,
			Total:         order.Total,
			ComputedTotal: computed,
			Items:         lines,
			PlacedAt:      s.now(),
		},
	})
}

func validatePlaceOrder(input PlaceOrderInput) error {
	if input.TenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant is required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for i, item := range input.Items {
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"index": i})
		}
		if item.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative").
				WithDetails(map[string]any{"index": i})
		}
	}
	if input.Total.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "total cannot be negative")
	}
	return nil
}

func computeTotal(items []LineItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func productNotFound(ref string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage).
		WithDetails(map[string]any{"product_id": ref})
}
