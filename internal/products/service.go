package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velorashop/storefront-backend/pkg/db"
	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/enums"
	pkgerrors "github.com/velorashop/storefront-backend/pkg/errors"
)

// Service exposes catalog reads for the storefront and writes for admins.
type Service interface {
	ListPublished(ctx context.Context, cursor string, limit int) (ProductsPageDTO, error)
	Get(ctx context.Context, id uuid.UUID) (ProductDTO, error)

	ListAll(ctx context.Context, cursor string, limit int) (ProductsPageDTO, error)
	Create(ctx context.Context, input CreateProductInput) (ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (ProductDTO, error)
	Archive(ctx context.Context, id uuid.UUID) error
}

// ServiceParams groups dependencies for the product service.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo *Repository
}

// NewService builds a product service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) ListPublished(ctx context.Context, cursor string, limit int) (ProductsPageDTO, error) {
	rows, next, err := s.repo.ListPublished(ctx, cursor, limit)
	if err != nil {
		return ProductsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return toPage(rows, next), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ProductDTO, error) {
	if id == uuid.Nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return toDTO(*product), nil
}

func (s *service) ListAll(ctx context.Context, cursor string, limit int) (ProductsPageDTO, error) {
	rows, next, err := s.repo.ListAll(ctx, cursor, limit)
	if err != nil {
		return ProductsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return toPage(rows, next), nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (ProductDTO, error) {
	sku := strings.TrimSpace(input.SKU)
	title := strings.TrimSpace(input.Title)
	if sku == "" || title == "" {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "sku and title are required")
	}
	if input.SellingPrice <= 0 {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "selling price must be positive")
	}
	if input.MRP != nil && *input.MRP < input.SellingPrice {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "mrp cannot be below selling price")
	}

	product := models.Product{
		SKU:          sku,
		Title:        title,
		SellingPrice: input.SellingPrice,
		MRP:          input.MRP,
		StockQty:     input.StockQty,
		IsPublished:  input.IsPublished,
		Status:       statusFor(input.IsPublished),
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		product.Description = &desc
	}

	if err := s.repo.Create(ctx, &product); err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku") {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return toDTO(product), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (ProductDTO, error) {
	if id == uuid.Nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		product.Title = title
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if desc == "" {
			product.Description = nil
		} else {
			product.Description = &desc
		}
	}
	if input.SellingPrice != nil {
		if *input.SellingPrice <= 0 {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "selling price must be positive")
		}
		product.SellingPrice = *input.SellingPrice
	}
	if input.MRP != nil {
		product.MRP = input.MRP
	}
	if product.MRP != nil && *product.MRP < product.SellingPrice {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "mrp cannot be below selling price")
	}
	if input.StockQty != nil {
		if *input.StockQty < 0 {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.StockQty = *input.StockQty
	}
	if input.IsPublished != nil {
		product.IsPublished = *input.IsPublished
		product.Status = statusFor(*input.IsPublished)
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return toDTO(*product), nil
}

// Archive unpublishes the product and marks it archived. Rows are never
// deleted so existing order line items keep a valid reference.
func (s *service) Archive(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	product.IsPublished = false
	product.Status = enums.ProductStatusArchived
	if err := s.repo.Update(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive product")
	}
	return nil
}
