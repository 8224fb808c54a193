package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/types"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	SaveSnapshot(ctx context.Context, cartID uuid.UUID, snapshot *types.PricingSnapshot) error
}

// ProductCatalog loads live catalog rows for cart lines.
type ProductCatalog interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// CouponValidator resolves a coupon name against the published coupon set and
// the cart subtotal. The universal floor check is not its concern.
type CouponValidator interface {
	Validate(ctx context.Context, name string, subtotal int) (*models.Coupon, error)
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
