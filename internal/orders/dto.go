package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastros/pos-backend/internal/products"
	"github.com/lastros/pos-backend/pkg/db/models"
	"github.com/lastros/pos-backend/pkg/enums"
)

// PlaceOrderRequest is the POST /orders body.
type PlaceOrderRequest struct {
	Items []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	Total decimal.Decimal   `json:"total"`
}

// LineItemRequest accepts the product reference as product_id or productId.
type LineItemRequest struct {
	ProductID      string          `json:"product_id"`
	ProductIDCamel string          `json:"productId"`
	Quantity       int             `json:"quantity" validate:"min=1"`
	Price          decimal.Decimal `json:"price"`
}

// ToInput builds the service input for the authenticated actor.
func (r PlaceOrderRequest) ToInput(tenantID, actorID uuid.UUID) PlaceOrderInput {
	items := make([]LineItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		productID := strings.TrimSpace(item.ProductID)
		if productID == "" {
			productID = strings.TrimSpace(item.ProductIDCamel)
		}
		items = append(items, LineItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return PlaceOrderInput{
		TenantID:    tenantID,
		ActorUserID: actorID,
		Items:       items,
		Total:       r.Total,
	}
}

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID            uuid.UUID         `json:"id"`
	TenantID      uuid.UUID         `json:"tenant_id"`
	Total         decimal.Decimal   `json:"total"`
	Status        enums.OrderStatus `json:"status"`
	CreatedBy     *uuid.UUID        `json:"created_by,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemDTO    `json:"items"`
	TotalMismatch bool              `json:"total_mismatch,omitempty"`
}

// OrderItemDTO is one sold line with the product it references.
type OrderItemDTO struct {
	ID        uuid.UUID            `json:"id"`
	ProductID uuid.UUID            `json:"product_id"`
	Quantity  int                  `json:"quantity"`
	Price     decimal.Decimal      `json:"price"`
	Product   *products.ProductDTO `json:"product,omitempty"`
}

// FromModel maps an order row and its preloaded items onto the DTO.
func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:        order.ID,
		TenantID:  order.TenantID,
		Total:     order.Total,
		Status:    order.Status,
		CreatedBy: order.CreatedBy,
		CreatedAt: order.CreatedAt,
		Items:     make([]OrderItemDTO, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Product:   products.FromModel(item.Product),
		})
	}
	return dto
}
