package products

import (
	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/enums"
)

// ProductDTO is the storefront-facing catalog shape.
type ProductDTO struct {
	ID           uuid.UUID `json:"id"`
	SKU          string    `json:"sku"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	SellingPrice int       `json:"selling_price"`
	MRP          *int      `json:"mrp,omitempty"`
	InStock      bool      `json:"in_stock"`
	IsPublished  bool      `json:"is_published"`
	Status       string    `json:"status"`
}

// ProductsPageDTO is a cursor page of products.
type ProductsPageDTO struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CreateProductInput captures the admin create payload.
type CreateProductInput struct {
	SKU          string `json:"sku" validate:"required,max=64"`
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	SellingPrice int    `json:"selling_price" validate:"required,min=1"`
	MRP          *int   `json:"mrp" validate:"omitempty,min=1"`
	StockQty     int    `json:"stock_qty" validate:"min=0"`
	IsPublished  bool   `json:"is_published"`
}

// UpdateProductInput carries partial updates; nil means leave unchanged.
type UpdateProductInput struct {
	Title        *string `json:"title" validate:"omitempty,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	SellingPrice *int    `json:"selling_price" validate:"omitempty,min=1"`
	MRP          *int    `json:"mrp" validate:"omitempty,min=1"`
	StockQty     *int    `json:"stock_qty" validate:"omitempty,min=0"`
	IsPublished  *bool   `json:"is_published"`
}

func toDTO(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:           p.ID,
		SKU:          p.SKU,
		Title:        p.Title,
		SellingPrice: p.SellingPrice,
		MRP:          p.MRP,
		InStock:      p.InStock(),
		IsPublished:  p.IsPublished,
		Status:       string(p.Status),
	}
	if p.Description != nil {
		dto.Description = *p.Description
	}
	return dto
}

func toPage(rows []models.Product, nextCursor string) ProductsPageDTO {
	items := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row))
	}
	return ProductsPageDTO{Items: items, NextCursor: nextCursor}
}

func statusFor(published bool) enums.ProductStatus {
	if published {
		return enums.ProductStatusActive
	}
	return enums.ProductStatusDraft
}
