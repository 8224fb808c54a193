package cart

import (
	"github.com/shopspring/decimal"

	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/enums"
	pkgerrors "github.com/velorashop/storefront-backend/pkg/errors"
	"github.com/velorashop/storefront-backend/pkg/types"
)

const (
	// shippingFlat is charged on every order regardless of size.
	shippingFlat = 199
	// couponFloor is the universal minimum subtotal for any coupon. Carts at
	// or below it cannot apply a coupon, independent of the coupon's own
	// min cart value.
	couponFloor = 99
)

// gstRate is 18% applied to the eligible subtotal.
var gstRate = decimal.New(18, -2)

// baseCharges computes the pre-discount breakdown. GST is rounded here once;
// the discount gets its own single terminal rounding in discountFor.
func baseCharges(subtotal int) types.PriceSummary {
	gst := int(decimal.NewFromInt(int64(subtotal)).Mul(gstRate).Round(0).IntPart())
	preTotal := subtotal + gst + shippingFlat
	return types.PriceSummary{
		Subtotal: subtotal,
		GST:      gst,
		Shipping: shippingFlat,
		PreTotal: preTotal,
	}
}

// discountFor computes the rounded discount a coupon yields against preTotal.
// Percentage discounts are capped at MaxDiscount when set; a cap of exactly 0
// zeroes the discount. Rounding happens once, after the cap.
func discountFor(coupon *models.Coupon, preTotal int) (int, error) {
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		raw := decimal.NewFromInt(int64(preTotal)).
			Mul(decimal.NewFromInt(int64(coupon.DiscountValue))).
			Div(decimal.NewFromInt(100))
		if coupon.MaxDiscount != nil {
			cap := decimal.NewFromInt(int64(*coupon.MaxDiscount))
			if raw.GreaterThan(cap) {
				raw = cap
			}
		}
		return int(raw.Round(0).IntPart()), nil
	case enums.DiscountTypeFlat:
		return coupon.DiscountValue, nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "unknown discount type")
	}
}

// quoteWithoutCoupon is the always-reachable no-discount snapshot.
func quoteWithoutCoupon(subtotal int) types.PricingSnapshot {
	summary := baseCharges(subtotal)
	summary.GrandTotal = maxInt(summary.PreTotal, 0)
	summary.Note = "no coupon applied"
	return types.PricingSnapshot{
		DiscountValue: 0,
		IsApplied:     false,
		Summary:       summary,
	}
}

// quoteWithCoupon assumes the coupon has already passed validation.
func quoteWithCoupon(subtotal int, coupon *models.Coupon) (types.PricingSnapshot, error) {
	summary := baseCharges(subtotal)
	discount, err := discountFor(coupon, summary.PreTotal)
	if err != nil {
		return types.PricingSnapshot{}, err
	}
	summary.Discount = discount
	summary.GrandTotal = maxInt(summary.PreTotal-discount, 0)
	couponID := coupon.ID
	return types.PricingSnapshot{
		CouponID:      &couponID,
		CouponName:    coupon.Name,
		DiscountValue: discount,
		IsApplied:     true,
		Summary:       summary,
	}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
