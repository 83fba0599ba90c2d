package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastros/pos-backend/pkg/db/models"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	ImageURL  *string         `json:"image_url"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateProductRequest is the POST /products body.
type CreateProductRequest struct {
	Name     string          `json:"name" validate:"required,max=120"`
	Price    decimal.Decimal `json:"price"`
	Stock    *int            `json:"stock" validate:"omitempty,min=0"`
	ImageURL *string         `json:"image_url" validate:"omitempty,max=512"`
}

// UpdateProductRequest is the PATCH /products/{id} body. Absent fields are left untouched.
type UpdateProductRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *int             `json:"stock" validate:"omitempty,min=0"`
	ImageURL *string          `json:"image_url" validate:"omitempty,max=512"`
}

// ToInput converts the request into service input.
func (r CreateProductRequest) ToInput() CreateProductInput {
	in := CreateProductInput{
		Name:     r.Name,
		Price:    r.Price,
		ImageURL: r.ImageURL,
	}
	if r.Stock != nil {
		in.Stock = *r.Stock
	}
	return in
}

func (r UpdateProductRequest) ToInput() UpdateProductInput {
	return UpdateProductInput(r)
}

// FromModel maps a product row onto its DTO.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
