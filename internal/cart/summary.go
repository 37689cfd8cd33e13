package cart

import (
	"github.com/angelmondragon/storefront-session/pkg/catalogapi"
	"github.com/shopspring/decimal"
)

// FreeDeliveryThreshold is the subtotal from which delivery is free.
var FreeDeliveryThreshold = decimal.NewFromInt(1000)

// Summary is derived from the cart lines and never stored.
type Summary struct {
	Subtotal     decimal.Decimal
	FreeDelivery bool
}

func LineTotal(line catalogapi.CartLine) decimal.Decimal {
	return line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

func Summarize(lines []catalogapi.CartLine) Summary {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(LineTotal(line))
	}
	return Summary{
		Subtotal:     subtotal,
		FreeDelivery: subtotal.GreaterThanOrEqual(FreeDeliveryThreshold),
	}
}
