package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velorashop/storefront-backend/pkg/db/models"
	pkgerrors "github.com/velorashop/storefront-backend/pkg/errors"
	"github.com/velorashop/storefront-backend/pkg/logger"
	"github.com/velorashop/storefront-backend/pkg/types"
)

const (
	actionAdd    = "add"
	actionSub    = "sub"
	actionRemove = "remove"
)

// Service exposes cart reads, quantity mutations and coupon pricing.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (CartDTO, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (QuoteDTO, error)
	MutateItem(ctx context.Context, userID uuid.UUID, input MutateItemInput) (CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo    CartRepository
	Catalog ProductCatalog
	Coupons CouponValidator
	Tx      TxRunner
	Policy  AvailabilityPolicy
	Logg    *logger.Logger
}

type service struct {
	repo    CartRepository
	catalog ProductCatalog
	coupons CouponValidator
	tx      TxRunner
	policy  AvailabilityPolicy
	logg    *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product catalog is required")
	}
	if params.Coupons == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon validator is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{
		repo:    params.Repo,
		catalog: params.Catalog,
		coupons: params.Coupons,
		tx:      params.Tx,
		policy:  params.Policy,
		logg:    params.Logg,
	}, nil
}

// GetCart returns the aggregated cart view. A missing cart is a well-formed
// empty result, not an error.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}

	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyCartDTO(), nil
		}
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	agg, err := s.aggregate(ctx, cart.Items)
	if err != nil {
		return CartDTO{}, err
	}
	return toCartDTO(agg, cart), nil
}

// ApplyCoupon runs the pricing engine and persists the resulting snapshot on
// the cart. An empty code is the always-reachable no-discount path.
func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (QuoteDTO, error) {
	if userID == uuid.Nil {
		return QuoteDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}

	var quote QuoteDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		agg, err := s.aggregate(ctx, cart.Items)
		if err != nil {
			return err
		}
		if agg.Empty() {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		snapshot, err := s.quoteFor(ctx, agg, code)
		if err != nil {
			return err
		}

		if err := repo.SaveSnapshot(ctx, cart.ID, &snapshot); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist pricing snapshot")
		}

		quote = QuoteDTO{
			Items:   toItemDTOs(agg.Available),
			Summary: snapshot.Summary,
		}
		return nil
	})
	if err != nil {
		return QuoteDTO{}, err
	}
	return quote, nil
}

// MutateItem applies an add/sub/remove mutation and refreshes the pricing
// snapshot in the same transaction. A decrement that reaches zero removes the
// line. A snapshot that can no longer be priced is cleared, the mutation is
// kept.
func (s *service) MutateItem(ctx context.Context, userID uuid.UUID, input MutateItemInput) (CartDTO, error) {
	if userID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Qty <= 0 && input.Action != actionRemove {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.loadOrCreate(ctx, repo, userID, input.Action)
		if err != nil {
			return err
		}

		switch input.Action {
		case actionAdd:
			if err := s.addLine(ctx, repo, cart, input.ProductID, input.Qty); err != nil {
				return err
			}
		case actionSub:
			if err := s.subLine(ctx, repo, cart, input.ProductID, input.Qty); err != nil {
				return err
			}
		case actionRemove:
			if err := s.removeLine(ctx, repo, cart, input.ProductID); err != nil {
				return err
			}
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown action %q", input.Action))
		}

		return s.reprice(ctx, repo, cart)
	})
	if err != nil {
		return CartDTO{}, err
	}

	return s.GetCart(ctx, userID)
}

// Clear drops every line and the snapshot.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if err := repo.ClearItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		if err := repo.SaveSnapshot(ctx, cart.ID, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear pricing snapshot")
		}
		return nil
	})
}

func (s *service) loadOrCreate(ctx context.Context, repo CartRepository, userID uuid.UUID, action string) (*models.Cart, error) {
	cart, err := repo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if action != actionAdd {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart not found")
	}
	cart = &models.Cart{UserID: userID}
	if err := repo.Create(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return cart, nil
}

func (s *service) addLine(ctx context.Context, repo CartRepository, cart *models.Cart, productID uuid.UUID, qty int) error {
	item, err := repo.FindItem(ctx, cart.ID, productID)
	if err == nil {
		item.Qty += qty
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	catalog, err := s.catalog.FindByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if _, ok := catalog[productID]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	item = &models.CartItem{CartID: cart.ID, ProductID: productID, Qty: qty}
	if err := repo.SaveItem(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}
	return nil
}

func (s *service) subLine(ctx context.Context, repo CartRepository, cart *models.Cart, productID uuid.UUID, qty int) error {
	item, err := repo.FindItem(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not in cart")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	item.Qty -= qty
	if item.Qty <= 0 {
		if err := repo.DeleteItem(ctx, cart.ID, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		return nil
	}
	if err := repo.SaveItem(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}
	return nil
}

func (s *service) removeLine(ctx context.Context, repo CartRepository, cart *models.Cart, productID uuid.UUID) error {
	if _, err := repo.FindItem(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not in cart")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if err := repo.DeleteItem(ctx, cart.ID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return nil
}

// reprice refreshes the cart snapshot after a mutation. Pricing failures that
// are the cart's own fault (too small for the coupon now, empty, coupon gone)
// clear the snapshot instead of rolling back the mutation.
func (s *service) reprice(ctx context.Context, repo CartRepository, cart *models.Cart) error {
	if cart.PricingSnapshot == nil {
		return nil
	}

	fresh, err := repo.FindByUser(ctx, cart.UserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}

	agg, err := s.aggregate(ctx, fresh.Items)
	if err != nil {
		return err
	}
	if agg.Empty() {
		return s.clearSnapshot(ctx, repo, cart.ID)
	}

	code := ""
	if cart.PricingSnapshot.IsApplied {
		code = cart.PricingSnapshot.CouponName
	}

	snapshot, err := s.quoteFor(ctx, agg, code)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && (typed.Code() == pkgerrors.CodeValidation || typed.Code() == pkgerrors.CodeNotFound) {
			if s.logg != nil {
				logCtx := s.logg.WithFields(ctx, map[string]any{
					"cart_id": cart.ID.String(),
					"coupon":  code,
					"reason":  typed.Message(),
				})
				s.logg.Warn(logCtx, "cart.snapshot.cleared")
			}
			return s.clearSnapshot(ctx, repo, cart.ID)
		}
		return err
	}

	if err := repo.SaveSnapshot(ctx, cart.ID, &snapshot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist pricing snapshot")
	}
	return nil
}

func (s *service) clearSnapshot(ctx context.Context, repo CartRepository, cartID uuid.UUID) error {
	if err := repo.SaveSnapshot(ctx, cartID, nil); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear pricing snapshot")
	}
	return nil
}

// quoteFor prices an aggregation against an optional coupon code. The caller
// has already rejected fully empty carts.
func (s *service) quoteFor(ctx context.Context, agg Aggregation, code string) (snapshot types.PricingSnapshot, err error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return quoteWithoutCoupon(agg.Subtotal), nil
	}

	if agg.Subtotal <= couponFloor {
		return snapshot, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("coupons require a cart subtotal above %d", couponFloor))
	}

	coupon, err := s.coupons.Validate(ctx, normalized, agg.Subtotal)
	if err != nil {
		return snapshot, err
	}
	return quoteWithCoupon(agg.Subtotal, coupon)
}

func (s *service) aggregate(ctx context.Context, items []models.CartItem) (Aggregation, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	catalog, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return Aggregation{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog rows")
	}
	return aggregate(items, catalog, s.policy), nil
}

func emptyCartDTO() CartDTO {
	return CartDTO{
		Items:            []CartItemDTO{},
		UnavailableItems: []CartItemDTO{},
	}
}

func toCartDTO(agg Aggregation, cart *models.Cart) CartDTO {
	return CartDTO{
		Items:            toItemDTOs(agg.Available),
		UnavailableItems: toItemDTOs(agg.Unavailable),
		Subtotal:         agg.Subtotal,
		TotalQty:         agg.TotalQty,
		Pricing:          cart.PricingSnapshot,
	}
}
