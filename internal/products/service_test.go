package products

import (
	"context"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/velorashop/storefront-backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

// The create/update paths validate before touching the database, so the
// rejection cases run against a repository that is never exercised.
func newValidationService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: NewRepository(nil)})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc := newValidationService(t)
	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"missing sku", CreateProductInput{Title: "Tote", SellingPrice: 100}},
		{"missing title", CreateProductInput{SKU: "TOTE-1", SellingPrice: 100}},
		{"zero price", CreateProductInput{SKU: "TOTE-1", Title: "Tote"}},
		{"mrp below price", CreateProductInput{SKU: "TOTE-1", Title: "Tote", SellingPrice: 500, MRP: intPtr(400)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Create(context.Background(), tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc := newValidationService(t)
	_, err := svc.Update(context.Background(), uuid.Nil, UpdateProductInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for nil id, got %v", err)
	}
}

func TestGetRequiresID(t *testing.T) {
	t.Parallel()

	svc := newValidationService(t)
	_, err := svc.Get(context.Background(), uuid.Nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
