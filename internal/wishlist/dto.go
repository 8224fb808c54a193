package wishlist

import (
	"time"

	"github.com/google/uuid"
)

// ItemDTO is one liked product with its current catalog state inlined.
type ItemDTO struct {
	ProductID    uuid.UUID `json:"product_id"`
	Title        string    `json:"title"`
	SellingPrice int       `json:"selling_price"`
	MRP          *int      `json:"mrp,omitempty"`
	InStock      bool      `json:"in_stock"`
	IsPublished  bool      `json:"is_published"`
	AddedAt      time.Time `json:"added_at"`
}

// PageDTO is a cursor page of wishlist items.
type PageDTO struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// AddItemInput identifies the product to like.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}
