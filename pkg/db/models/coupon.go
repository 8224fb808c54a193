package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/enums"
)

// Coupon is a storefront discount code. Name is the business key and is
// normalized to upper case before storage and lookup.
type Coupon struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string             `gorm:"column:name;not null;uniqueIndex"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue int                `gorm:"column:discount_value;not null"`
	MaxDiscount   *int               `gorm:"column:max_discount"`
	MinCartValue  int                `gorm:"column:min_cart_value;not null;default:0"`
	IsPublished   bool               `gorm:"column:is_published;not null;default:false"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
