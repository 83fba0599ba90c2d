package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/pkg/db"
	"github.com/lastros/pos-backend/pkg/db/models"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
	"github.com/lastros/pos-backend/pkg/logger"
)

const (
	notFoundMessage     = "product not found"
	salesHistoryMessage = "product has sales history"
)

// Service exposes catalog management for a single restaurant.
type Service interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]ProductDTO, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	SetImage(ctx context.Context, tenantID, id uuid.UUID, imageURL string) (*ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name     string
	Price    decimal.Decimal
	Stock    int
	ImageURL *string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name     *string
	Price    *decimal.Decimal
	Stock    *int
	ImageURL *string
}

type productRepository interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, changes map[string]any) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	HasSales(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo productRepository
	logg *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo productRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]ProductDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant is required")
	}
	rows, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return fromModels(rows), nil
}

func (s *service) Get(ctx context.Context, tenantID, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	product := &models.Product{
		TenantID: tenantID,
		Name:     name,
		Price:    input.Price.Round(2),
		Stock:    input.Stock,
		ImageURL: trimOptional(input.ImageURL),
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsCheckViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product values")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	s.logg.Info(s.logg.WithTenantID(ctx, tenantID.String()), "product.created")
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	changes, err := updateColumns(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tenantID, id, changes); err != nil {
		return nil, mapRepoError(err, "update product")
	}
	return s.Get(ctx, tenantID, id)
}

func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.load(ctx, tenantID, id); err != nil {
		return err
	}
	sold, err := s.repo.HasSales(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product sales")
	}
	if sold {
		return pkgerrors.New(pkgerrors.CodeConflict, salesHistoryMessage)
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, salesHistoryMessage)
		}
		return mapRepoError(err, "delete product")
	}
	s.logg.Info(s.logg.WithTenantID(ctx, tenantID.String()), "product.deleted")
	return nil
}

func (s *service) SetImage(ctx context.Context, tenantID, id uuid.UUID, imageURL string) (*ProductDTO, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url is required")
	}
	return s.Update(ctx, tenantID, id, UpdateProductInput{ImageURL: &imageURL})
}

func (s *service) load(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	product, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapRepoError(err, "load product")
	}
	return product, nil
}

func updateColumns(input UpdateProductInput) (map[string]any, error) {
	changes := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		changes["name"] = name
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		changes["price"] = input.Price.Round(2)
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		changes["stock"] = *input.Stock
	}
	if input.ImageURL != nil {
		changes["image_url"] = trimOptional(input.ImageURL)
	}
	return changes, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapRepoError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	if db.IsCheckViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product values")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
