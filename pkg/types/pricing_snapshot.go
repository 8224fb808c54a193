package types

import "github.com/google/uuid"

// PriceSummary is the full charge breakdown for a cart. All amounts are whole
// currency units; the discount is rounded exactly once when it is computed.
type PriceSummary struct {
	Subtotal   int    `json:"subtotal"`
	GST        int    `json:"gst"`
	Shipping   int    `json:"shipping"`
	PreTotal   int    `json:"pre_total"`
	Discount   int    `json:"discount"`
	GrandTotal int    `json:"grand_total"`
	Note       string `json:"note,omitempty"`
}

// PricingSnapshot is the cached result of the last pricing run, persisted on
// the cart. Checkout charges snapshot.Summary.GrandTotal and nothing else.
type PricingSnapshot struct {
	CouponID      *uuid.UUID   `json:"coupon_id,omitempty"`
	CouponName    string       `json:"coupon_name,omitempty"`
	DiscountValue int          `json:"discount_value"`
	IsApplied     bool         `json:"is_applied"`
	Summary       PriceSummary `json:"summary"`
}
