package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/velorashop/storefront-backend/pkg/errors"
)

// Service exposes order history reads. Order creation lives at the checkout
// boundary.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, cursor string, limit int) (OrdersPageDTO, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error)
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo *Repository
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, cursor string, limit int) (OrdersPageDTO, error) {
	if userID == uuid.Nil {
		return OrdersPageDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	rows, next, err := s.repo.ListByUser(ctx, userID, cursor, limit)
	if err != nil {
		return OrdersPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page := OrdersPageDTO{Items: make([]OrderDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		page.Items = append(page.Items, ToDTO(row))
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error) {
	if userID == uuid.Nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if orderID == uuid.Nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return ToDTO(*order), nil
}
