package enums

// OrderStatus tracks an order through the payment lifecycle.
type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusPaid, OrderStatusFailed:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}
