package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/types"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  pricing_snapshot TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id)
);`
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func newCart(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Cart {
	t.Helper()

	cart := &models.Cart{ID: uuid.New(), UserID: userID}
	require.NoError(t, NewRepository(db).Create(context.Background(), cart))
	return cart
}

func seedLine(t *testing.T, db *gorm.DB, cartID, productID uuid.UUID, qty int) {
	t.Helper()

	item := &models.CartItem{ID: uuid.New(), CartID: cartID, ProductID: productID, Qty: qty}
	require.NoError(t, NewRepository(db).SaveItem(context.Background(), item))
}

func TestRepositoryItemLifecycle(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	cart := newCart(t, db, userID)
	productA := uuid.New()
	productB := uuid.New()
	seedLine(t, db, cart.ID, productA, 2)
	seedLine(t, db, cart.ID, productB, 1)

	loaded, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)

	item, err := repo.FindItem(ctx, cart.ID, productA)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Qty)

	item.Qty = 5
	require.NoError(t, repo.SaveItem(ctx, item))
	item, err = repo.FindItem(ctx, cart.ID, productA)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Qty)

	require.NoError(t, repo.DeleteItem(ctx, cart.ID, productA))
	_, err = repo.FindItem(ctx, cart.ID, productA)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, repo.ClearItems(ctx, cart.ID))
	loaded, err = repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Items)
}

func TestRepositoryFindByUserMissing(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByUser(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositorySnapshotRoundTrip(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	cart := newCart(t, db, userID)

	couponID := uuid.New()
	snapshot := &types.PricingSnapshot{
		CouponID:      &couponID,
		CouponName:    "SAVE20",
		DiscountValue: 240,
		IsApplied:     true,
		Summary: types.PriceSummary{
			Subtotal:   1200,
			GST:        216,
			Shipping:   199,
			PreTotal:   1615,
			Discount:   240,
			GrandTotal: 1375,
		},
	}
	require.NoError(t, repo.SaveSnapshot(ctx, cart.ID, snapshot))

	loaded, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, loaded.PricingSnapshot)
	assert.Equal(t, "SAVE20", loaded.PricingSnapshot.CouponName)
	assert.Equal(t, 1375, loaded.PricingSnapshot.Summary.GrandTotal)
	require.NotNil(t, loaded.PricingSnapshot.CouponID)
	assert.Equal(t, couponID, *loaded.PricingSnapshot.CouponID)

	require.NoError(t, repo.SaveSnapshot(ctx, cart.ID, nil))
	loaded, err = repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, loaded.PricingSnapshot)
}
