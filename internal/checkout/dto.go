package checkout

import (
	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/internal/orders"
)

// OrderItemInput is one requested line: product plus quantity, never a price.
type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,min=1"`
}

// CreateOrderInput is the order creation payload. The charge amount is
// deliberately absent; it always comes from the cart's pricing snapshot.
type CreateOrderInput struct {
	Items []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// CreateOrderDTO is returned to the client to start the gateway flow.
type CreateOrderDTO struct {
	Order          orders.OrderDTO `json:"order"`
	GatewayOrderID string          `json:"gateway_order_id"`
	Amount         int             `json:"amount"`
	Currency       string          `json:"currency"`
}

// ConfirmPaymentInput carries the gateway callback fields.
type ConfirmPaymentInput struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	PaymentID string    `json:"payment_id" validate:"required"`
	Signature string    `json:"signature" validate:"required"`
}
