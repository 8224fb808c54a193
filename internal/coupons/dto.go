package coupons

import (
	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/db/models"
)

// CouponDTO is the public coupon shape: the fields a shopper needs to decide
// whether a code is worth typing, minus internal bookkeeping.
type CouponDTO struct {
	Name          string `json:"name"`
	DiscountType  string `json:"discount_type"`
	DiscountValue int    `json:"discount_value"`
	MaxDiscount   *int   `json:"max_discount,omitempty"`
	MinCartValue  int    `json:"min_cart_value"`
}

// AdminCouponDTO includes the identifiers and publication state.
type AdminCouponDTO struct {
	ID uuid.UUID `json:"id"`
	CouponDTO
	IsPublished bool `json:"is_published"`
}

// CreateCouponInput captures the admin create payload.
type CreateCouponInput struct {
	Name          string `json:"name" validate:"required,max=40"`
	DiscountType  string `json:"discount_type" validate:"required,oneof=PERCENTAGE FLAT"`
	DiscountValue int    `json:"discount_value" validate:"required,min=1"`
	MaxDiscount   *int   `json:"max_discount" validate:"omitempty,min=0"`
	MinCartValue  int    `json:"min_cart_value" validate:"min=0"`
	IsPublished   bool   `json:"is_published"`
}

// UpdateCouponInput carries partial updates; nil means leave unchanged.
type UpdateCouponInput struct {
	DiscountValue *int  `json:"discount_value" validate:"omitempty,min=1"`
	MaxDiscount   *int  `json:"max_discount" validate:"omitempty,min=0"`
	MinCartValue  *int  `json:"min_cart_value" validate:"omitempty,min=0"`
	IsPublished   *bool `json:"is_published"`
}

func toDTO(c models.Coupon) CouponDTO {
	return CouponDTO{
		Name:          c.Name,
		DiscountType:  string(c.DiscountType),
		DiscountValue: c.DiscountValue,
		MaxDiscount:   c.MaxDiscount,
		MinCartValue:  c.MinCartValue,
	}
}

func toAdminDTO(c models.Coupon) AdminCouponDTO {
	return AdminCouponDTO{
		ID:          c.ID,
		CouponDTO:   toDTO(c),
		IsPublished: c.IsPublished,
	}
}
