package enums

// ProductBadge represents the promotional tags rendered on a product card.
type ProductBadge string

const (
	ProductBadgeDesignOfWeek ProductBadge = "design_of_week"
	ProductBadgeCotton       ProductBadge = "cotton"
	ProductBadgeSpecialOffer ProductBadge = "special_offer"
	ProductBadgeBundleOffer  ProductBadge = "bundle_offer"
	ProductBadgeGlowInDark   ProductBadge = "glow_in_dark"
)

var productBadgeLabels = map[ProductBadge]string{
	ProductBadgeDesignOfWeek: "DESIGN OF THE WEEK",
	ProductBadgeCotton:       "100% COTTON",
	ProductBadgeSpecialOffer: "SALE SPECIAL PRICE",
	ProductBadgeBundleOffer:  "BUY 3 FOR 999",
	ProductBadgeGlowInDark:   "GLOW IN DARK",
}

// String implements fmt.Stringer.
func (b ProductBadge) String() string {
	return string(b)
}

// Label returns the display text for the badge.
func (b ProductBadge) Label() string {
	return productBadgeLabels[b]
}
