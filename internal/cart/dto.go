package cart

import (
	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/types"
)

// CartItemDTO is one line of the cart as returned to clients.
type CartItemDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title,omitempty"`
	UnitPrice int       `json:"unit_price"`
	Qty       int       `json:"qty"`
	LineTotal int       `json:"line_total"`
}

// CartDTO is the aggregated cart view.
type CartDTO struct {
	Items            []CartItemDTO          `json:"items"`
	UnavailableItems []CartItemDTO          `json:"unavailable_items"`
	Subtotal         int                    `json:"subtotal"`
	TotalQty         int                    `json:"total_qty"`
	Pricing          *types.PricingSnapshot `json:"pricing,omitempty"`
}

// QuoteDTO is the apply-coupon result: the refreshed breakdown plus the lines
// it was computed from.
type QuoteDTO struct {
	Items   []CartItemDTO      `json:"items"`
	Summary types.PriceSummary `json:"summary"`
}

// MutateItemInput captures a quantity mutation request.
type MutateItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,min=1"`
	Action    string    `json:"action" validate:"required,oneof=add sub remove"`
}

func toItemDTOs(lines []Line) []CartItemDTO {
	items := make([]CartItemDTO, 0, len(lines))
	for _, line := range lines {
		dto := CartItemDTO{
			ProductID: line.Item.ProductID,
			Qty:       line.Item.Qty,
		}
		if line.Product != nil {
			dto.Title = line.Product.Title
			dto.UnitPrice = line.Product.SellingPrice
			dto.LineTotal = line.Product.SellingPrice * line.Item.Qty
		}
		items = append(items, dto)
	}
	return items
}
