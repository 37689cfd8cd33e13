package enums

import "fmt"

// SortKey represents the catalog orderings the backend understands.
type SortKey string

const (
	SortKeyNone      SortKey = ""
	SortKeyPriceAsc  SortKey = "price_asc"
	SortKeyPriceDesc SortKey = "price_desc"
	SortKeyNameAsc   SortKey = "name_asc"
	SortKeyNameDesc  SortKey = "name_desc"
)

var validSortKeys = []SortKey{
	SortKeyNone,
	SortKeyPriceAsc,
	SortKeyPriceDesc,
	SortKeyNameAsc,
	SortKeyNameDesc,
}

// String implements fmt.Stringer.
func (s SortKey) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SortKey.
func (s SortKey) IsValid() bool {
	for _, candidate := range validSortKeys {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortKey converts raw input into a SortKey. "none" is accepted as an
// alias for the backend default.
func ParseSortKey(value string) (SortKey, error) {
	if value == "none" {
		return SortKeyNone, nil
	}
	if key := SortKey(value); key.IsValid() {
		return key, nil
	}
	return "", fmt.Errorf("invalid sort key %q", value)
}
