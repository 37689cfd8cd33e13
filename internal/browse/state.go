package browse

import (
	"net/url"
	"strings"

	"github.com/angelmondragon/storefront-session/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	paramSort     = "sort"
	paramMinPrice = "min_price"
	paramMaxPrice = "max_price"
)

var (
	DefaultMinPrice = decimal.Zero
	DefaultMaxPrice = decimal.NewFromInt(2000)
)

// PriceRange bounds the product query by price.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

func DefaultPriceRange() PriceRange {
	return PriceRange{Min: DefaultMinPrice, Max: DefaultMaxPrice}
}

// Effective clamps negative bounds to zero.
func (p PriceRange) Effective() PriceRange {
	out := p
	if out.Min.IsNegative() {
		out.Min = decimal.Zero
	}
	if out.Max.IsNegative() {
		out.Max = decimal.Zero
	}
	return out
}

// Inverted reports whether no price can satisfy the range.
func (p PriceRange) Inverted() bool {
	eff := p.Effective()
	return eff.Min.GreaterThan(eff.Max)
}

// State is the visitor's filter, price and sort selection. The zero value is
// not ready for use; start from NewState.
type State struct {
	filters map[string]string
	price   PriceRange
	sort    enums.SortKey
}

func NewState() State {
	return State{filters: map[string]string{}, price: DefaultPriceRange()}
}

// SetFilter toggles value for category: selecting the active value clears the
// category, any other value replaces it.
func (s *State) SetFilter(category, value string) {
	category = strings.TrimSpace(category)
	if category == "" {
		return
	}
	if s.filters == nil {
		s.filters = map[string]string{}
	}
	if current, ok := s.filters[category]; value == "" || (ok && current == value) {
		delete(s.filters, category)
		return
	}
	s.filters[category] = value
}

// SetPriceRange stores the bounds as given.
func (s *State) SetPriceRange(min, max decimal.Decimal) {
	s.price = PriceRange{Min: min, Max: max}
}

func (s *State) SetSort(key enums.SortKey) {
	s.sort = key
}

func (s *State) Reset() {
	*s = NewState()
}

func (s State) Filters() map[string]string {
	out := make(map[string]string, len(s.filters))
	for k, v := range s.filters {
		out[k] = v
	}
	return out
}

func (s State) Price() PriceRange { return s.price }

func (s State) Sort() enums.SortKey { return s.sort }

func (s State) Clone() State {
	return State{filters: s.Filters(), price: s.price, sort: s.sort}
}

// BuildQuery flattens the state into product query parameters. The sort and
// price parameters always win over a filter category of the same name.
func (s State) BuildQuery() url.Values {
	query := url.Values{}
	for category, value := range s.filters {
		query.Set(category, value)
	}
	price := s.price.Effective()
	query.Set(paramSort, s.sort.String())
	query.Set(paramMinPrice, price.Min.String())
	query.Set(paramMaxPrice, price.Max.String())
	return query
}
