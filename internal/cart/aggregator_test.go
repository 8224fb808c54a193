package cart

import (
	"testing"

	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/db/models"
)

func TestAggregateSplitsMissingProducts(t *testing.T) {
	t.Parallel()

	known := uuid.New()
	gone := uuid.New()
	items := []models.CartItem{
		{ProductID: known, Qty: 2},
		{ProductID: gone, Qty: 1},
	}
	catalog := map[uuid.UUID]models.Product{
		known: {ID: known, SellingPrice: 500, StockQty: 3, IsPublished: true},
	}

	agg := aggregate(items, catalog, DefaultAvailabilityPolicy())
	if len(agg.Available) != 1 || len(agg.Unavailable) != 1 {
		t.Fatalf("expected 1 available / 1 unavailable, got %d/%d", len(agg.Available), len(agg.Unavailable))
	}
	if agg.Subtotal != 1000 {
		t.Fatalf("expected subtotal 1000 got %d", agg.Subtotal)
	}
	if agg.TotalQty != 2 {
		t.Fatalf("expected total qty 2 got %d", agg.TotalQty)
	}
}

func TestAggregateLenientKeepsOutOfStock(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	items := []models.CartItem{{ProductID: id, Qty: 1}}
	catalog := map[uuid.UUID]models.Product{
		id: {ID: id, SellingPrice: 250, StockQty: 0, IsPublished: false},
	}

	agg := aggregate(items, catalog, DefaultAvailabilityPolicy())
	if len(agg.Available) != 1 {
		t.Fatalf("lenient policy must keep existing products, got %d available", len(agg.Available))
	}
	if agg.Subtotal != 250 {
		t.Fatalf("expected subtotal 250 got %d", agg.Subtotal)
	}
}

func TestAggregateStrictExcludesUnsellable(t *testing.T) {
	t.Parallel()

	outOfStock := uuid.New()
	unpublished := uuid.New()
	sellable := uuid.New()
	items := []models.CartItem{
		{ProductID: outOfStock, Qty: 1},
		{ProductID: unpublished, Qty: 1},
		{ProductID: sellable, Qty: 3},
	}
	catalog := map[uuid.UUID]models.Product{
		outOfStock:  {ID: outOfStock, SellingPrice: 100, StockQty: 0, IsPublished: true},
		unpublished: {ID: unpublished, SellingPrice: 100, StockQty: 5, IsPublished: false},
		sellable:    {ID: sellable, SellingPrice: 100, StockQty: 5, IsPublished: true},
	}

	agg := aggregate(items, catalog, StrictAvailabilityPolicy())
	if len(agg.Available) != 1 || len(agg.Unavailable) != 2 {
		t.Fatalf("expected 1 available / 2 unavailable, got %d/%d", len(agg.Available), len(agg.Unavailable))
	}
	if agg.Subtotal != 300 {
		t.Fatalf("expected subtotal 300 got %d", agg.Subtotal)
	}
}

func TestAggregateEmptyCart(t *testing.T) {
	t.Parallel()

	agg := aggregate(nil, map[uuid.UUID]models.Product{}, DefaultAvailabilityPolicy())
	if !agg.Empty() {
		t.Fatal("expected empty aggregation")
	}
	if agg.Subtotal != 0 || agg.TotalQty != 0 {
		t.Fatalf("expected zero-value result, got %d/%d", agg.Subtotal, agg.TotalQty)
	}
}
