package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/db/models"
)

// OrderItemDTO is one immutable line of a placed order.
type OrderItemDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	UnitPrice int       `json:"unit_price"`
	Qty       int       `json:"qty"`
}

// OrderDTO is the client-facing order shape.
type OrderDTO struct {
	ID             uuid.UUID      `json:"id"`
	Amount         int            `json:"amount"`
	CouponName     string         `json:"coupon_name,omitempty"`
	Status         string         `json:"status"`
	GatewayOrderID string         `json:"gateway_order_id,omitempty"`
	Items          []OrderItemDTO `json:"items"`
	CreatedAt      time.Time      `json:"created_at"`
}

// OrdersPageDTO is a cursor page of orders.
type OrdersPageDTO struct {
	Items      []OrderDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ToDTO maps a persisted order to its client shape.
func ToDTO(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:             order.ID,
		Amount:         order.Amount,
		Status:         string(order.Status),
		GatewayOrderID: order.GatewayOrderID,
		CreatedAt:      order.CreatedAt,
		Items:          make([]OrderItemDTO, 0, len(order.Items)),
	}
	if order.CouponName != nil {
		dto.CouponName = *order.CouponName
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID: item.ProductID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Qty:       item.Qty,
		})
	}
	return dto
}
