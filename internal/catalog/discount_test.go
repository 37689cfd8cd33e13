package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDiscountPercentage(t *testing.T) {
	cases := []struct {
		name     string
		price    string
		original *string
		want     int
		wantOK   bool
	}{
		{name: "regular discount", price: "449", original: strPtr("999"), want: 55, wantOK: true},
		{name: "half rounds away from zero", price: "75", original: strPtr("200"), want: 63, wantOK: true},
		{name: "missing original", price: "449", original: nil},
		{name: "equal original", price: "500", original: strPtr("500")},
		{name: "lower original", price: "500", original: strPtr("400")},
		{name: "zero original", price: "0", original: strPtr("0")},
		{name: "rounds to zero", price: "999.99", original: strPtr("1000")},
		{name: "tiny price never reads free", price: "0.001", original: strPtr("1000"), want: 99, wantOK: true},
		{name: "free item", price: "0", original: strPtr("499"), want: 100, wantOK: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			original := decimal.NullDecimal{}
			if tc.original != nil {
				original = decimal.NewNullDecimal(decimal.RequireFromString(*tc.original))
			}
			got, ok := DiscountPercentage(decimal.RequireFromString(tc.price), original)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("DiscountPercentage(%s, %v) = (%d, %v), want (%d, %v)", tc.price, tc.original, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestDiscountPercentageStaysInRange(t *testing.T) {
	for original := 2; original <= 300; original += 7 {
		for price := 1; price < original; price += 3 {
			pct, ok := DiscountPercentage(decimal.NewFromInt(int64(price)), decimal.NewNullDecimal(decimal.NewFromInt(int64(original))))
			if ok && (pct <= 0 || pct >= 100) {
				t.Fatalf("price %d original %d gave %d", price, original, pct)
			}
		}
	}
}

func strPtr(s string) *string { return &s }
