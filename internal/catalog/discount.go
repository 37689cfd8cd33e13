package catalog

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountPercentage returns round((original-price)/original*100) and true
// when the product is actually discounted. A missing, non-positive or
// not-greater original price reports no discount. A discount that rounds to
// zero is reported as none, and a positive price never reads as 100% off.
func DiscountPercentage(price decimal.Decimal, original decimal.NullDecimal) (int, bool) {
	if !original.Valid || !original.Decimal.IsPositive() {
		return 0, false
	}
	if original.Decimal.LessThanOrEqual(price) {
		return 0, false
	}
	pct := original.Decimal.Sub(price).Div(original.Decimal).Mul(hundred).Round(0)
	value := int(pct.IntPart())
	if value <= 0 {
		return 0, false
	}
	if value >= 100 && price.IsPositive() {
		value = 99
	}
	return value, true
}
