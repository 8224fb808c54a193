package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velorashop/storefront-backend/pkg/db/models"
	pkgerrors "github.com/velorashop/storefront-backend/pkg/errors"
)

// Store is the wishlist persistence surface.
type Store interface {
	Add(ctx context.Context, item *models.WishlistItem) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.WishlistItem, string, error)
}

// ProductCatalog loads catalog rows for the liked products.
type ProductCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service exposes wishlist reads and writes.
type Service interface {
	Add(ctx context.Context, userID uuid.UUID, input AddItemInput) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, cursor string, limit int) (PageDTO, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo    Store
	Catalog ProductCatalog
}

type service struct {
	repo    Store
	catalog ProductCatalog
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product catalog is required")
	}
	return &service{repo: params.Repo, catalog: params.Catalog}, nil
}

// Add likes a product. The product must exist; liking it twice is a no-op.
func (s *service) Add(ctx context.Context, userID uuid.UUID, input AddItemInput) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if _, err := s.catalog.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	item := &models.WishlistItem{UserID: userID, ProductID: input.ProductID}
	if err := s.repo.Add(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return nil
}

// Remove unlikes a product.
func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "wishlist item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return nil
}

// List returns the user's likes with live catalog data. Products deleted from
// the catalog since the like are skipped.
func (s *service) List(ctx context.Context, userID uuid.UUID, cursor string, limit int) (PageDTO, error) {
	if userID == uuid.Nil {
		return PageDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	rows, next, err := s.repo.ListByUser(ctx, userID, cursor, limit)
	if err != nil {
		return PageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	catalog, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return PageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	page := PageDTO{Items: make([]ItemDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		product, ok := catalog[row.ProductID]
		if !ok {
			continue
		}
		page.Items = append(page.Items, ItemDTO{
			ProductID:    product.ID,
			Title:        product.Title,
			SellingPrice: product.SellingPrice,
			MRP:          product.MRP,
			InStock:      product.InStock(),
			IsPublished:  product.IsPublished,
			AddedAt:      row.CreatedAt,
		})
	}
	return page, nil
}
