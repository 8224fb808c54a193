package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velorashop/storefront-backend/internal/orders"
	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/enums"
	pkgerrors "github.com/velorashop/storefront-backend/pkg/errors"
	"github.com/velorashop/storefront-backend/pkg/logger"
	"github.com/velorashop/storefront-backend/pkg/payment"
)

// Service is the checkout boundary. The charge amount always comes from the
// cart's persisted pricing snapshot; client-supplied items carry quantities
// only and are cross-checked against the live catalog.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (CreateOrderDTO, error)
	ConfirmPayment(ctx context.Context, userID uuid.UUID, input ConfirmPaymentInput) (orders.OrderDTO, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Orders   OrderStore
	Carts    CartStore
	Catalog  ProductCatalog
	Gateway  payment.Gateway
	Currency string
	Logg     *logger.Logger
}

type service struct {
	orders   OrderStore
	carts    CartStore
	catalog  ProductCatalog
	gateway  payment.Gateway
	currency string
	logg     *logger.Logger
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order store is required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product catalog is required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment gateway is required")
	}
	return &service{
		orders:   params.Orders,
		carts:    params.Carts,
		catalog:  params.Catalog,
		gateway:  params.Gateway,
		currency: params.Currency,
		logg:     params.Logg,
	}, nil
}

// CreateOrder registers a gateway order for the snapshot's grand total and
// persists the order in status created. The call fails closed when the cart
// has no pricing snapshot.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (CreateOrderDTO, error) {
	if userID == uuid.Nil {
		return CreateOrderDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if len(input.Items) == 0 {
		return CreateOrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "order items are required")
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CreateOrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart pricing not calculated")
		}
		return CreateOrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart.PricingSnapshot == nil {
		return CreateOrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart pricing not calculated")
	}

	lines, err := s.buildLines(ctx, input.Items)
	if err != nil {
		return CreateOrderDTO{}, err
	}

	amount := cart.PricingSnapshot.Summary.GrandTotal
	if amount <= 0 {
		return CreateOrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}

	orderID := uuid.New()
	gatewayOrder, err := s.gateway.CreateOrder(ctx, payment.CreateOrderInput{
		Amount:  amount,
		Receipt: orderID.String(),
		Notes: map[string]string{
			"user_id": userID.String(),
		},
	})
	if err != nil {
		return CreateOrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}

	order := &models.Order{
		ID:             orderID,
		UserID:         userID,
		Amount:         amount,
		Status:         enums.OrderStatusCreated,
		GatewayOrderID: gatewayOrder.ID,
		Items:          lines,
	}
	if cart.PricingSnapshot.IsApplied && cart.PricingSnapshot.CouponName != "" {
		name := cart.PricingSnapshot.CouponName
		order.CouponName = &name
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return CreateOrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	currency := gatewayOrder.Currency
	if currency == "" {
		currency = s.currency
	}
	return CreateOrderDTO{
		Order:          orders.ToDTO(*order),
		GatewayOrderID: gatewayOrder.ID,
		Amount:         amount,
		Currency:       currency,
	}, nil
}

// buildLines cross-validates every requested item against the live catalog.
// Products must exist, be published and have stock; any failure rejects the
// whole order.
func (s *service) buildLines(ctx context.Context, items []OrderItemInput) ([]models.OrderLineItem, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if item.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
		if seen[item.ProductID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate product %s in order items", item.ProductID))
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	catalog, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	lines := make([]models.OrderLineItem, 0, len(items))
	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", item.ProductID))
		}
		if !product.IsPublished || !product.InStock() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s is unavailable", item.ProductID))
		}
		lines = append(lines, models.OrderLineItem{
			ProductID: product.ID,
			Title:     product.Title,
			UnitPrice: product.SellingPrice,
			Qty:       item.Qty,
		})
	}
	return lines, nil
}

// ConfirmPayment verifies the gateway's HMAC for the order. A valid signature
// marks the order paid and empties the cart; an invalid one marks the order
// failed. Confirming an already-paid order is an idempotent no-op.
func (s *service) ConfirmPayment(ctx context.Context, userID uuid.UUID, input ConfirmPaymentInput) (orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if input.OrderID == uuid.Nil || input.PaymentID == "" || input.Signature == "" {
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "order id, payment id and signature are required")
	}

	order, err := s.orders.FindByIDAndUser(ctx, input.OrderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	switch order.Status {
	case enums.OrderStatusPaid:
		return orders.ToDTO(*order), nil
	case enums.OrderStatusFailed:
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "payment already failed for this order")
	}

	if !s.gateway.VerifySignature(order.GatewayOrderID, input.PaymentID, input.Signature) {
		if err := s.orders.MarkFailed(ctx, order.ID); err != nil {
			return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order failed")
		}
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "payment signature verification failed")
	}

	if err := s.orders.MarkPaid(ctx, order.ID, input.PaymentID, input.Signature); err != nil {
		return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	order.Status = enums.OrderStatusPaid
	order.PaymentID = &input.PaymentID
	order.Signature = &input.Signature

	// The payment is captured at this point; a cart cleanup failure must not
	// surface as a confirm failure.
	if err := s.emptyCart(ctx, userID); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"error":    err.Error(),
		})
		s.logg.Warn(logCtx, "checkout.cart_cleanup_failed")
	}

	return orders.ToDTO(*order), nil
}

func (s *service) emptyCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if err := s.carts.ClearItems(ctx, cart.ID); err != nil {
		return err
	}
	return s.carts.SaveSnapshot(ctx, cart.ID, nil)
}
