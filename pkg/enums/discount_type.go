package enums

// DiscountType distinguishes the two coupon discount formulas.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFlat       DiscountType = "FLAT"
)

func (d DiscountType) IsValid() bool {
	switch d {
	case DiscountTypePercentage, DiscountTypeFlat:
		return true
	}
	return false
}

func (d DiscountType) String() string {
	return string(d)
}
