package cart

import (
	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/db/models"
)

// AvailabilityPolicy decides which cart lines count toward the subtotal.
// The lenient default treats catalog existence as eligibility; strict mode
// additionally requires publication and stock.
type AvailabilityPolicy struct {
	RequireInStock   bool
	RequirePublished bool
}

// DefaultAvailabilityPolicy gates on catalog existence only.
func DefaultAvailabilityPolicy() AvailabilityPolicy {
	return AvailabilityPolicy{}
}

// StrictAvailabilityPolicy gates on publication and stock as well.
func StrictAvailabilityPolicy() AvailabilityPolicy {
	return AvailabilityPolicy{RequireInStock: true, RequirePublished: true}
}

func (p AvailabilityPolicy) eligible(product models.Product) bool {
	if p.RequirePublished && !product.IsPublished {
		return false
	}
	if p.RequireInStock && !product.InStock() {
		return false
	}
	return true
}

// Line pairs a cart item with its catalog row, if one still exists.
type Line struct {
	Item    models.CartItem
	Product *models.Product
}

// Aggregation is the read-only view of a cart joined against the catalog.
type Aggregation struct {
	Available   []Line
	Unavailable []Line
	Subtotal    int
	TotalQty    int
}

// Empty reports whether the cart holds no lines at all.
func (a Aggregation) Empty() bool {
	return len(a.Available) == 0 && len(a.Unavailable) == 0
}

// aggregate joins cart items against catalog rows. Ineligible lines land in
// Unavailable and contribute nothing to the subtotal.
func aggregate(items []models.CartItem, catalog map[uuid.UUID]models.Product, policy AvailabilityPolicy) Aggregation {
	agg := Aggregation{}
	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			agg.Unavailable = append(agg.Unavailable, Line{Item: item})
			continue
		}
		p := product
		line := Line{Item: item, Product: &p}
		if !policy.eligible(product) {
			agg.Unavailable = append(agg.Unavailable, line)
			continue
		}
		agg.Available = append(agg.Available, line)
		agg.Subtotal += product.SellingPrice * item.Qty
		agg.TotalQty += item.Qty
	}
	return agg
}
