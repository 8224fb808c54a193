package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/enums"
)

// Order snapshots a checkout. Amount always comes from the cart's pricing
// snapshot, never from the request.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Amount         int               `gorm:"column:amount;not null"`
	CouponName     *string           `gorm:"column:coupon_name"`
	Status         enums.OrderStatus `gorm:"column:status;not null;default:'created'"`
	GatewayOrderID string            `gorm:"column:gateway_order_id;not null"`
	PaymentID      *string           `gorm:"column:payment_id"`
	Signature      *string           `gorm:"column:signature"`
	Items          []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLineItem is the immutable per-product snapshot stored with an order.
type OrderLineItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Title     string    `gorm:"column:title;not null"`
	UnitPrice int       `gorm:"column:unit_price;not null"`
	Qty       int       `gorm:"column:qty;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
