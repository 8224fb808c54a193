package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/types"
)

// Cart is the single per-user cart. The pricing snapshot cached here is the
// only amount source checkout will trust.
type Cart struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	PricingSnapshot *types.PricingSnapshot `gorm:"column:pricing_snapshot;type:jsonb;serializer:json"`
	Items           []CartItem             `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is one product line in a cart. Qty is always >= 1; a decrement that
// reaches zero deletes the row instead of persisting it.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	Qty       int       `gorm:"column:qty;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
