package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/enums"
)

// Product is the canonical catalog listing. Prices are whole currency units.
type Product struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU          string              `gorm:"column:sku;not null;uniqueIndex"`
	Title        string              `gorm:"column:title;not null"`
	Description  *string             `gorm:"column:description"`
	SellingPrice int                 `gorm:"column:selling_price;not null"`
	MRP          *int                `gorm:"column:mrp"`
	StockQty     int                 `gorm:"column:stock_qty;not null;default:0"`
	IsPublished  bool                `gorm:"column:is_published;not null;default:false"`
	Status       enums.ProductStatus `gorm:"column:status;not null;default:'draft'"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// InStock reports whether at least one unit can be sold.
func (p Product) InStock() bool {
	return p.StockQty > 0
}
