package cart

import (
	"testing"

	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/enums"
)

func intPtr(v int) *int { return &v }

func TestBaseChargesScenarioNoCoupon(t *testing.T) {
	t.Parallel()

	// subtotal 1000: gst 180, shipping 199, preTotal 1379
	snapshot := quoteWithoutCoupon(1000)
	sum := snapshot.Summary
	if sum.GST != 180 {
		t.Fatalf("expected gst 180 got %d", sum.GST)
	}
	if sum.Shipping != 199 {
		t.Fatalf("expected shipping 199 got %d", sum.Shipping)
	}
	if sum.PreTotal != 1379 {
		t.Fatalf("expected preTotal 1379 got %d", sum.PreTotal)
	}
	if sum.GrandTotal != 1379 || sum.Discount != 0 {
		t.Fatalf("expected grandTotal 1379 with no discount, got %d/%d", sum.GrandTotal, sum.Discount)
	}
	if snapshot.IsApplied {
		t.Fatal("no-coupon snapshot must not be marked applied")
	}
}

func TestFlatCouponInvariance(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{
		ID:            uuid.New(),
		Name:          "FLAT100",
		DiscountType:  enums.DiscountTypeFlat,
		DiscountValue: 100,
		MinCartValue:  500,
		IsPublished:   true,
	}

	// FLAT discount is the same value regardless of subtotal.
	for _, subtotal := range []int{500, 1000, 25000} {
		snapshot, err := quoteWithCoupon(subtotal, coupon)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snapshot.Summary.Discount != 100 {
			t.Fatalf("subtotal %d: expected flat discount 100 got %d", subtotal, snapshot.Summary.Discount)
		}
	}

	snapshot, err := quoteWithCoupon(1000, coupon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Summary.PreTotal != 1379 || snapshot.Summary.GrandTotal != 1279 {
		t.Fatalf("expected 1379/1279 got %d/%d", snapshot.Summary.PreTotal, snapshot.Summary.GrandTotal)
	}
	if !snapshot.IsApplied || snapshot.CouponName != "FLAT100" {
		t.Fatalf("snapshot should record the applied coupon, got %+v", snapshot)
	}
}

func TestPercentageCouponCap(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{
		ID:            uuid.New(),
		Name:          "SAVE20",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 20,
		MaxDiscount:   intPtr(300),
		IsPublished:   true,
	}

	// subtotal 2000: preTotal 2559, raw discount 511.8 -> capped at 300
	snapshot, err := quoteWithCoupon(2000, coupon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Summary.PreTotal != 2559 {
		t.Fatalf("expected preTotal 2559 got %d", snapshot.Summary.PreTotal)
	}
	if snapshot.Summary.Discount != 300 {
		t.Fatalf("expected capped discount 300 got %d", snapshot.Summary.Discount)
	}
	if snapshot.Summary.GrandTotal != 2259 {
		t.Fatalf("expected grandTotal 2259 got %d", snapshot.Summary.GrandTotal)
	}
}

func TestPercentageCouponUncappedRoundsOnce(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{
		ID:            uuid.New(),
		Name:          "SAVE20",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 20,
		IsPublished:   true,
	}

	snapshot, err := quoteWithCoupon(2000, coupon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// raw 511.8 rounds half-up to 512 exactly once
	if snapshot.Summary.Discount != 512 {
		t.Fatalf("expected discount 512 got %d", snapshot.Summary.Discount)
	}
	if snapshot.Summary.GrandTotal != 2559-512 {
		t.Fatalf("expected grandTotal %d got %d", 2559-512, snapshot.Summary.GrandTotal)
	}
}

func TestPercentageCouponZeroCapZeroesDiscount(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{
		ID:            uuid.New(),
		Name:          "NOOP",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 50,
		MaxDiscount:   intPtr(0),
		IsPublished:   true,
	}

	snapshot, err := quoteWithCoupon(2000, coupon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Summary.Discount != 0 {
		t.Fatalf("cap of 0 must zero the discount, got %d", snapshot.Summary.Discount)
	}
	if snapshot.Summary.GrandTotal != snapshot.Summary.PreTotal {
		t.Fatalf("expected grandTotal to equal preTotal, got %d/%d",
			snapshot.Summary.GrandTotal, snapshot.Summary.PreTotal)
	}
}

func TestGrandTotalNeverNegative(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{
		ID:            uuid.New(),
		Name:          "MEGAFLAT",
		DiscountType:  enums.DiscountTypeFlat,
		DiscountValue: 100000,
		IsPublished:   true,
	}

	snapshot, err := quoteWithCoupon(150, coupon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.Summary.GrandTotal != 0 {
		t.Fatalf("expected grandTotal clamped at 0, got %d", snapshot.Summary.GrandTotal)
	}
}

func TestQuoteIsDeterministic(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{
		ID:            uuid.New(),
		Name:          "SAVE15",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 15,
		MaxDiscount:   intPtr(450),
		IsPublished:   true,
	}

	first, err := quoteWithCoupon(3333, coupon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := quoteWithCoupon(3333, coupon)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Summary != first.Summary {
			t.Fatalf("pricing must be deterministic: %+v vs %+v", again.Summary, first.Summary)
		}
	}
}
