package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velorashop/storefront-backend/pkg/db"
	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/enums"
	pkgerrors "github.com/velorashop/storefront-backend/pkg/errors"
)

// CouponStore is the persistence surface the service needs.
type CouponStore interface {
	FindPublishedByName(ctx context.Context, name string) (*models.Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	ListPublished(ctx context.Context) ([]models.Coupon, error)
	ListAll(ctx context.Context) ([]models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
}

// Service exposes coupon validation for pricing plus admin management.
type Service interface {
	Validate(ctx context.Context, name string, subtotal int) (*models.Coupon, error)
	ListPublished(ctx context.Context) ([]CouponDTO, error)

	ListAll(ctx context.Context) ([]AdminCouponDTO, error)
	Create(ctx context.Context, input CreateCouponInput) (AdminCouponDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (AdminCouponDTO, error)
}

// ServiceParams groups dependencies for the coupon service.
type ServiceParams struct {
	Repo CouponStore
}

type service struct {
	repo CouponStore
}

// NewService builds a coupon service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// Validate resolves a coupon by name among published coupons and checks the
// coupon's own minimum against the subtotal. Failures carry a human-readable
// reason since they surface directly in checkout UI.
func (s *service) Validate(ctx context.Context, name string, subtotal int) (*models.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon name is required")
	}

	coupon, err := s.repo.FindPublishedByName(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "invalid or inactive coupon")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	if subtotal < coupon.MinCartValue {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("coupon %s requires a cart subtotal of at least %d", coupon.Name, coupon.MinCartValue))
	}
	return coupon, nil
}

// ListPublished returns the public coupon list.
func (s *service) ListPublished(ctx context.Context) ([]CouponDTO, error) {
	rows, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	items := make([]CouponDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row))
	}
	return items, nil
}

func (s *service) ListAll(ctx context.Context) ([]AdminCouponDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	items := make([]AdminCouponDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toAdminDTO(row))
	}
	return items, nil
}

func (s *service) Create(ctx context.Context, input CreateCouponInput) (AdminCouponDTO, error) {
	name := strings.ToUpper(strings.TrimSpace(input.Name))
	if name == "" {
		return AdminCouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon name is required")
	}

	discountType := enums.DiscountType(input.DiscountType)
	if !discountType.IsValid() {
		return AdminCouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "discount type must be PERCENTAGE or FLAT")
	}
	if input.DiscountValue <= 0 {
		return AdminCouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if discountType == enums.DiscountTypePercentage && input.DiscountValue > 100 {
		return AdminCouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if discountType == enums.DiscountTypeFlat && input.MaxDiscount != nil {
		return AdminCouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "max discount applies only to percentage coupons")
	}
	if input.MinCartValue < 0 {
		return AdminCouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "min cart value cannot be negative")
	}

	coupon := models.Coupon{
		Name:          name,
		DiscountType:  discountType,
		DiscountValue: input.DiscountValue,
		MaxDiscount:   input.MaxDiscount,
		MinCartValue:  input.MinCartValue,
		IsPublished:   input.IsPublished,
	}
	if err := s.repo.Create(ctx, &coupon); err != nil {
		if db.IsUniqueViolation(err, "idx_coupons_name") {
			return AdminCouponDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "coupon name already exists")
		}
		return AdminCouponDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return toAdminDTO(coupon), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (AdminCouponDTO, error) {
	if id == uuid.Nil {
		return AdminCouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "coupon id is required")
	}
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AdminCouponDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "coupon not found")
		}
		return AdminCouponDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	if input.DiscountValue != nil {
		if *input.DiscountValue <= 0 {
			return AdminCouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
		}
		if coupon.DiscountType == enums.DiscountTypePercentage && *input.DiscountValue > 100 {
			return AdminCouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
		}
		coupon.DiscountValue = *input.DiscountValue
	}
	if input.MaxDiscount != nil {
		if coupon.DiscountType != enums.DiscountTypePercentage {
			return AdminCouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "max discount applies only to percentage coupons")
		}
		coupon.MaxDiscount = input.MaxDiscount
	}
	if input.MinCartValue != nil {
		if *input.MinCartValue < 0 {
			return AdminCouponDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "min cart value cannot be negative")
		}
		coupon.MinCartValue = *input.MinCartValue
	}
	if input.IsPublished != nil {
		coupon.IsPublished = *input.IsPublished
	}

	if err := s.repo.Update(ctx, coupon); err != nil {
		return AdminCouponDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	return toAdminDTO(*coupon), nil
}
