package catalogapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ID is an opaque backend identifier. The catalog API emits numeric ids, but
// string ids are accepted too and the original form is preserved on the wire.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	value, err := rawToString(data)
	if err != nil {
		return err
	}
	*id = ID(value)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if isNumericLiteral(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// Image references a product picture by a path relative to the image host.
type Image struct {
	Image string `json:"image"`
}

type Size struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Product mirrors the catalog API's product payload. Prices arrive as
// decimal strings or numbers.
type Product struct {
	ID            ID                  `json:"id"`
	Name          string              `json:"name"`
	Brand         string              `json:"brand"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"original_price"`
	Images        []Image             `json:"images"`
	Sizes         []Size              `json:"sizes"`

	IsCotton       bool `json:"is_cotton"`
	IsSpecialOffer bool `json:"is_special_offer"`
	BundleOffer    bool `json:"bundle_offer"`
	GlowInDark     bool `json:"glow_in_dark"`
	IsDesignOfWeek bool `json:"is_design_of_week"`

	Fit         string              `json:"fit,omitempty"`
	Sleeve      string              `json:"sleeve,omitempty"`
	Neck        string              `json:"neck,omitempty"`
	Type        string              `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	Rating      decimal.NullDecimal `json:"rating"`
}

// FilterOptionSet maps a filter category to its selectable values. The set of
// categories is defined by the backend and changes without a redeploy.
type FilterOptionSet map[string][]string

func (f *FilterOptionSet) UnmarshalJSON(data []byte) error {
	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(FilterOptionSet, len(raw))
	for category, values := range raw {
		list := make([]string, 0, len(values))
		for _, value := range values {
			text, err := rawToString(value)
			if err != nil {
				return err
			}
			if text == "" {
				continue
			}
			list = append(list, text)
		}
		out[category] = list
	}
	*f = out
	return nil
}

// CartLine is one product+size+quantity entry of the backend cart.
type CartLine struct {
	ID       ID      `json:"id"`
	Product  Product `json:"product"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
}

type cartEnvelope struct {
	Items []CartLine `json:"items"`
}

// AddToCartRequest is the body of POST /cart/.
type AddToCartRequest struct {
	ProductID ID     `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type failureBody struct {
	Detail string `json:"detail"`
}

func rawToString(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return strings.TrimSpace(string(trimmed)), nil
}

func isNumericLiteral(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
