package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/enums"
	pkgerrors "github.com/velorashop/storefront-backend/pkg/errors"
	"github.com/velorashop/storefront-backend/pkg/types"
)

func TestApplyCouponEmptyCart(t *testing.T) {
	t.Parallel()

	repo := newMemCartRepo()
	svc := newTestService(t, repo, nil, nil)

	_, err := svc.ApplyCoupon(context.Background(), uuid.New(), "")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestApplyCouponNoCodePersistsSnapshot(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productID := uuid.New()
	repo := newMemCartRepo()
	repo.seed(userID, map[uuid.UUID]int{productID: 2})
	catalog := map[uuid.UUID]models.Product{
		productID: {ID: productID, Title: "Mug", SellingPrice: 500, StockQty: 9, IsPublished: true},
	}
	svc := newTestService(t, repo, catalog, nil)

	quote, err := svc.ApplyCoupon(context.Background(), userID, "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Summary.GrandTotal != 1379 {
		t.Fatalf("expected grandTotal 1379 got %d", quote.Summary.GrandTotal)
	}
	if repo.snapshot == nil || repo.snapshot.IsApplied {
		t.Fatalf("expected persisted unapplied snapshot, got %+v", repo.snapshot)
	}
}

func TestApplyCouponUniversalFloor(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productID := uuid.New()
	repo := newMemCartRepo()
	repo.seed(userID, map[uuid.UUID]int{productID: 1})
	catalog := map[uuid.UUID]models.Product{
		productID: {ID: productID, SellingPrice: 50, StockQty: 1, IsPublished: true},
	}
	validatorCalled := false
	svc := newTestService(t, repo, catalog, func(ctx context.Context, name string, subtotal int) (*models.Coupon, error) {
		validatorCalled = true
		return nil, nil
	})

	_, err := svc.ApplyCoupon(context.Background(), userID, "ANY")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error below floor, got %v", err)
	}
	if validatorCalled {
		t.Fatal("coupon lookup must not run below the universal floor")
	}
}

func TestApplyCouponNormalizesAndPersists(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productID := uuid.New()
	repo := newMemCartRepo()
	repo.seed(userID, map[uuid.UUID]int{productID: 2})
	catalog := map[uuid.UUID]models.Product{
		productID: {ID: productID, SellingPrice: 500, StockQty: 9, IsPublished: true},
	}
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Name:          "FLAT100",
		DiscountType:  enums.DiscountTypeFlat,
		DiscountValue: 100,
		MinCartValue:  500,
		IsPublished:   true,
	}
	var seenName string
	svc := newTestService(t, repo, catalog, func(ctx context.Context, name string, subtotal int) (*models.Coupon, error) {
		seenName = name
		return coupon, nil
	})

	quote, err := svc.ApplyCoupon(context.Background(), userID, "  flat100 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seenName != "FLAT100" {
		t.Fatalf("expected upper-cased lookup, got %q", seenName)
	}
	if quote.Summary.GrandTotal != 1279 {
		t.Fatalf("expected grandTotal 1279 got %d", quote.Summary.GrandTotal)
	}
	if repo.snapshot == nil || !repo.snapshot.IsApplied || repo.snapshot.CouponName != "FLAT100" {
		t.Fatalf("expected applied snapshot, got %+v", repo.snapshot)
	}
	if repo.snapshot.Summary.Discount != 100 {
		t.Fatalf("expected persisted discount 100 got %d", repo.snapshot.Summary.Discount)
	}
}

func TestApplyCouponIsIdempotent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productID := uuid.New()
	repo := newMemCartRepo()
	repo.seed(userID, map[uuid.UUID]int{productID: 4})
	catalog := map[uuid.UUID]models.Product{
		productID: {ID: productID, SellingPrice: 500, StockQty: 9, IsPublished: true},
	}
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Name:          "SAVE20",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 20,
		MaxDiscount:   intPtr(300),
		IsPublished:   true,
	}
	svc := newTestService(t, repo, catalog, func(ctx context.Context, name string, subtotal int) (*models.Coupon, error) {
		return coupon, nil
	})

	first, err := svc.ApplyCoupon(context.Background(), userID, "SAVE20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.ApplyCoupon(context.Background(), userID, "SAVE20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Summary != second.Summary {
		t.Fatalf("repeated apply must not accumulate: %+v vs %+v", first.Summary, second.Summary)
	}
}

func TestMutateItemAddCreatesCart(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productID := uuid.New()
	repo := newMemCartRepo()
	catalog := map[uuid.UUID]models.Product{
		productID: {ID: productID, Title: "Mug", SellingPrice: 500, StockQty: 9, IsPublished: true},
	}
	svc := newTestService(t, repo, catalog, nil)

	view, err := svc.MutateItem(context.Background(), userID, MutateItemInput{
		ProductID: productID, Qty: 2, Action: "add",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Qty != 2 {
		t.Fatalf("expected one line with qty 2, got %+v", view.Items)
	}
	if view.Subtotal != 1000 {
		t.Fatalf("expected subtotal 1000 got %d", view.Subtotal)
	}
}

func TestMutateItemAddUnknownProduct(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := newMemCartRepo()
	svc := newTestService(t, repo, nil, nil)

	_, err := svc.MutateItem(context.Background(), userID, MutateItemInput{
		ProductID: uuid.New(), Qty: 1, Action: "add",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func TestMutateItemSubReachingZeroRemovesLine(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productID := uuid.New()
	repo := newMemCartRepo()
	repo.seed(userID, map[uuid.UUID]int{productID: 2})
	catalog := map[uuid.UUID]models.Product{
		productID: {ID: productID, SellingPrice: 500, StockQty: 9, IsPublished: true},
	}
	svc := newTestService(t, repo, catalog, nil)

	view, err := svc.MutateItem(context.Background(), userID, MutateItemInput{
		ProductID: productID, Qty: 2, Action: "sub",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected line removed at zero, got %+v", view.Items)
	}
}

func TestMutateItemRepricesAppliedCoupon(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productID := uuid.New()
	repo := newMemCartRepo()
	repo.seed(userID, map[uuid.UUID]int{productID: 2})
	catalog := map[uuid.UUID]models.Product{
		productID: {ID: productID, SellingPrice: 500, StockQty: 9, IsPublished: true},
	}
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Name:          "FLAT100",
		DiscountType:  enums.DiscountTypeFlat,
		DiscountValue: 100,
		IsPublished:   true,
	}
	svc := newTestService(t, repo, catalog, func(ctx context.Context, name string, subtotal int) (*models.Coupon, error) {
		return coupon, nil
	})

	if _, err := svc.ApplyCoupon(context.Background(), userID, "FLAT100"); err != nil {
		t.Fatalf("apply coupon: %v", err)
	}

	if _, err := svc.MutateItem(context.Background(), userID, MutateItemInput{
		ProductID: productID, Qty: 2, Action: "add",
	}); err != nil {
		t.Fatalf("mutate: %v", err)
	}

	// subtotal is now 2000: gst 360, shipping 199, flat 100 off
	if repo.snapshot == nil || !repo.snapshot.IsApplied {
		t.Fatalf("expected refreshed applied snapshot, got %+v", repo.snapshot)
	}
	if repo.snapshot.Summary.GrandTotal != 2000+360+199-100 {
		t.Fatalf("expected refreshed grandTotal %d got %d", 2000+360+199-100, repo.snapshot.Summary.GrandTotal)
	}
}

func TestMutateItemClearsSnapshotWhenRepricingFails(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productID := uuid.New()
	repo := newMemCartRepo()
	repo.seed(userID, map[uuid.UUID]int{productID: 4})
	catalog := map[uuid.UUID]models.Product{
		productID: {ID: productID, SellingPrice: 500, StockQty: 9, IsPublished: true},
	}
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Name:          "BIGCART",
		DiscountType:  enums.DiscountTypeFlat,
		DiscountValue: 100,
		MinCartValue:  1500,
		IsPublished:   true,
	}
	svc := newTestService(t, repo, catalog, func(ctx context.Context, name string, subtotal int) (*models.Coupon, error) {
		if subtotal < coupon.MinCartValue {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart subtotal below coupon minimum")
		}
		return coupon, nil
	})

	if _, err := svc.ApplyCoupon(context.Background(), userID, "BIGCART"); err != nil {
		t.Fatalf("apply coupon: %v", err)
	}

	// dropping to qty 1 (subtotal 500) invalidates the coupon; the mutation
	// must survive and the snapshot must be cleared, not left stale
	view, err := svc.MutateItem(context.Background(), userID, MutateItemInput{
		ProductID: productID, Qty: 3, Action: "sub",
	})
	if err != nil {
		t.Fatalf("mutation must not roll back on repricing failure: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Qty != 1 {
		t.Fatalf("expected mutation kept, got %+v", view.Items)
	}
	if repo.snapshot != nil {
		t.Fatalf("expected snapshot cleared, got %+v", repo.snapshot)
	}
}

func TestClearRemovesItemsAndSnapshot(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productID := uuid.New()
	repo := newMemCartRepo()
	repo.seed(userID, map[uuid.UUID]int{productID: 2})
	repo.snapshot = &types.PricingSnapshot{IsApplied: true, CouponName: "FLAT100"}
	svc := newTestService(t, repo, nil, nil)

	if err := svc.Clear(context.Background(), userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected items cleared, got %d", len(repo.items))
	}
	if repo.snapshot != nil {
		t.Fatalf("expected snapshot cleared, got %+v", repo.snapshot)
	}
}

func newTestService(t *testing.T, repo *memCartRepo, catalog map[uuid.UUID]models.Product, validate validateFunc) Service {
	t.Helper()
	if validate == nil {
		validate = func(ctx context.Context, name string, subtotal int) (*models.Coupon, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invalid or inactive coupon")
		}
	}
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Catalog: stubCatalog{products: catalog},
		Coupons: validate,
		Tx:      stubTxRunner{},
		Policy:  DefaultAvailabilityPolicy(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCatalog struct {
	products map[uuid.UUID]models.Product
}

func (s stubCatalog) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	result := make(map[uuid.UUID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

type validateFunc func(ctx context.Context, name string, subtotal int) (*models.Coupon, error)

func (f validateFunc) Validate(ctx context.Context, name string, subtotal int) (*models.Coupon, error) {
	return f(ctx, name, subtotal)
}

// memCartRepo is a single-user in-memory CartRepository.
type memCartRepo struct {
	cartID   uuid.UUID
	userID   uuid.UUID
	items    map[uuid.UUID]int
	snapshot *types.PricingSnapshot
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{items: make(map[uuid.UUID]int)}
}

func (m *memCartRepo) seed(userID uuid.UUID, items map[uuid.UUID]int) {
	m.cartID = uuid.New()
	m.userID = userID
	for id, qty := range items {
		m.items[id] = qty
	}
}

func (m *memCartRepo) WithTx(_ *gorm.DB) CartRepository { return m }

func (m *memCartRepo) FindByUser(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	if m.cartID == uuid.Nil || m.userID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cart := &models.Cart{ID: m.cartID, UserID: m.userID, PricingSnapshot: m.snapshot}
	for productID, qty := range m.items {
		cart.Items = append(cart.Items, models.CartItem{
			CartID: m.cartID, ProductID: productID, Qty: qty,
		})
	}
	return cart, nil
}

func (m *memCartRepo) Create(_ context.Context, cart *models.Cart) error {
	cart.ID = uuid.New()
	m.cartID = cart.ID
	m.userID = cart.UserID
	return nil
}

func (m *memCartRepo) FindItem(_ context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	if cartID != m.cartID {
		return nil, gorm.ErrRecordNotFound
	}
	qty, ok := m.items[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.CartItem{CartID: cartID, ProductID: productID, Qty: qty}, nil
}

func (m *memCartRepo) SaveItem(_ context.Context, item *models.CartItem) error {
	m.items[item.ProductID] = item.Qty
	return nil
}

func (m *memCartRepo) DeleteItem(_ context.Context, cartID, productID uuid.UUID) error {
	delete(m.items, productID)
	return nil
}

func (m *memCartRepo) ClearItems(_ context.Context, cartID uuid.UUID) error {
	m.items = make(map[uuid.UUID]int)
	return nil
}

func (m *memCartRepo) SaveSnapshot(_ context.Context, cartID uuid.UUID, snapshot *types.PricingSnapshot) error {
	m.snapshot = snapshot
	return nil
}
