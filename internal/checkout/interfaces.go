package checkout

import (
	"context"

	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/types"
)

// OrderStore is the order persistence surface checkout needs.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paymentID, signature string) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// CartStore is the cart surface checkout needs: the snapshot read on order
// creation and the clear after payment.
type CartStore interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	SaveSnapshot(ctx context.Context, cartID uuid.UUID, snapshot *types.PricingSnapshot) error
}

// ProductCatalog loads live catalog rows for item cross-validation.
type ProductCatalog interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}
