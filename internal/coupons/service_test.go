package coupons

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velorashop/storefront-backend/pkg/db/models"
	"github.com/velorashop/storefront-backend/pkg/enums"
	pkgerrors "github.com/velorashop/storefront-backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

func newService(t *testing.T, store *memCouponStore) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: store})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestValidateUnknownCoupon(t *testing.T) {
	t.Parallel()

	svc := newService(t, newMemCouponStore())
	_, err := svc.Validate(context.Background(), "NOPE", 5000)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if typed := pkgerrors.As(err); typed.Message() != "invalid or inactive coupon" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestValidateUnpublishedCouponIsInvisible(t *testing.T) {
	t.Parallel()

	store := newMemCouponStore()
	store.add(models.Coupon{
		Name: "HIDDEN", DiscountType: enums.DiscountTypeFlat, DiscountValue: 50, IsPublished: false,
	})
	svc := newService(t, store)

	_, err := svc.Validate(context.Background(), "HIDDEN", 5000)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unpublished coupon, got %v", err)
	}
}

func TestValidateMinCartValue(t *testing.T) {
	t.Parallel()

	store := newMemCouponStore()
	store.add(models.Coupon{
		Name: "BIG500", DiscountType: enums.DiscountTypeFlat, DiscountValue: 500,
		MinCartValue: 2000, IsPublished: true,
	})
	svc := newService(t, store)

	_, err := svc.Validate(context.Background(), "BIG500", 1999)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error below minimum, got %v", err)
	}
	if !strings.Contains(typed.Message(), "2000") {
		t.Fatalf("error should name the required minimum, got %q", typed.Message())
	}

	coupon, err := svc.Validate(context.Background(), "BIG500", 2000)
	if err != nil {
		t.Fatalf("expected success at exact minimum, got %v", err)
	}
	if coupon.Name != "BIG500" {
		t.Fatalf("unexpected coupon %+v", coupon)
	}
}

func TestValidateNormalizesCase(t *testing.T) {
	t.Parallel()

	store := newMemCouponStore()
	store.add(models.Coupon{
		Name: "SAVE20", DiscountType: enums.DiscountTypePercentage, DiscountValue: 20, IsPublished: true,
	})
	svc := newService(t, store)

	coupon, err := svc.Validate(context.Background(), "  save20 ", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coupon.Name != "SAVE20" {
		t.Fatalf("unexpected coupon %+v", coupon)
	}
}

func TestCreateValidatesShape(t *testing.T) {
	t.Parallel()

	svc := newService(t, newMemCouponStore())

	cases := []struct {
		name  string
		input CreateCouponInput
	}{
		{"bad type", CreateCouponInput{Name: "X", DiscountType: "BOGO", DiscountValue: 10}},
		{"zero value", CreateCouponInput{Name: "X", DiscountType: "FLAT", DiscountValue: 0}},
		{"pct over 100", CreateCouponInput{Name: "X", DiscountType: "PERCENTAGE", DiscountValue: 120}},
		{"cap on flat", CreateCouponInput{Name: "X", DiscountType: "FLAT", DiscountValue: 10, MaxDiscount: intPtr(5)}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), tc.input); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestCreateUppercasesName(t *testing.T) {
	t.Parallel()

	store := newMemCouponStore()
	svc := newService(t, store)

	dto, err := svc.Create(context.Background(), CreateCouponInput{
		Name: "welcome10", DiscountType: "PERCENTAGE", DiscountValue: 10,
		MaxDiscount: intPtr(200), IsPublished: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Name != "WELCOME10" {
		t.Fatalf("expected upper-cased name, got %q", dto.Name)
	}
}

func TestUpdatePublishToggle(t *testing.T) {
	t.Parallel()

	store := newMemCouponStore()
	id := store.add(models.Coupon{
		Name: "SAVE20", DiscountType: enums.DiscountTypePercentage, DiscountValue: 20, IsPublished: true,
	})
	svc := newService(t, store)

	published := false
	dto, err := svc.Update(context.Background(), id, UpdateCouponInput{IsPublished: &published})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.IsPublished {
		t.Fatal("expected coupon unpublished")
	}

	if _, err := svc.Validate(context.Background(), "SAVE20", 5000); err == nil {
		t.Fatal("unpublished coupon must stop validating")
	}
}

// memCouponStore is an in-memory CouponStore.
type memCouponStore struct {
	rows map[uuid.UUID]models.Coupon
}

func newMemCouponStore() *memCouponStore {
	return &memCouponStore{rows: make(map[uuid.UUID]models.Coupon)}
}

func (m *memCouponStore) add(c models.Coupon) uuid.UUID {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.rows[c.ID] = c
	return c.ID
}

func (m *memCouponStore) FindPublishedByName(_ context.Context, name string) (*models.Coupon, error) {
	for _, row := range m.rows {
		if row.Name == strings.ToUpper(name) && row.IsPublished {
			c := row
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memCouponStore) FindByID(_ context.Context, id uuid.UUID) (*models.Coupon, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := row
	return &c, nil
}

func (m *memCouponStore) ListPublished(_ context.Context) ([]models.Coupon, error) {
	var out []models.Coupon
	for _, row := range m.rows {
		if row.IsPublished {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memCouponStore) ListAll(_ context.Context) ([]models.Coupon, error) {
	var out []models.Coupon
	for _, row := range m.rows {
		out = append(out, row)
	}
	return out, nil
}

func (m *memCouponStore) Create(_ context.Context, coupon *models.Coupon) error {
	coupon.ID = uuid.New()
	m.rows[coupon.ID] = *coupon
	return nil
}

func (m *memCouponStore) Update(_ context.Context, coupon *models.Coupon) error {
	m.rows[coupon.ID] = *coupon
	return nil
}
