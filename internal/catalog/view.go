package catalog

import (
	"sort"
	"strings"

	"github.com/angelmondragon/storefront-session/pkg/catalogapi"
	"github.com/angelmondragon/storefront-session/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	cardPlaceholder   = "https://via.placeholder.com/250"
	detailPlaceholder = "https://via.placeholder.com/600"
)

// ProductView is the card representation of a product.
type ProductView struct {
	ID                 catalogapi.ID `json:"id"`
	Name               string        `json:"name"`
	Brand              string        `json:"brand,omitempty"`
	Price              string        `json:"price"`
	OriginalPrice      string        `json:"original_price,omitempty"`
	DiscountPercentage *int          `json:"discount_percentage,omitempty"`
	ImageURL           string        `json:"image_url"`
	Badges             []Badge       `json:"badges"`
	Rating             string        `json:"rating,omitempty"`
}

type Badge struct {
	Code  enums.ProductBadge `json:"code"`
	Label string             `json:"label"`
}

// DetailView is the product page representation.
type DetailView struct {
	ProductView
	Images        []string    `json:"images"`
	SelectedImage string      `json:"selected_image"`
	Sizes         []SizeView  `json:"sizes"`
	Attributes    []Attribute `json:"attributes"`
	Description   string      `json:"description,omitempty"`
}

type SizeView struct {
	ID   catalogapi.ID `json:"id"`
	Name string        `json:"name"`
}

// Attribute is an optional labelled product property such as fit or sleeve.
type Attribute struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FilterGroup is one filter category with its selectable values.
type FilterGroup struct {
	Category string   `json:"category"`
	Values   []string `json:"values"`
}

// Presenter derives display fields from backend products.
type Presenter struct {
	imageBase string
}

func NewPresenter(imageBaseURL string) *Presenter {
	return &Presenter{imageBase: strings.TrimRight(strings.TrimSpace(imageBaseURL), "/")}
}

// ImageURL resolves a backend image path against the image host. Absolute
// URLs pass through untouched.
func (p *Presenter) ImageURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return path
	}
	if p == nil || p.imageBase == "" {
		return path
	}
	return p.imageBase + "/" + strings.TrimLeft(path, "/")
}

func (p *Presenter) Product(product catalogapi.Product) ProductView {
	view := ProductView{
		ID:       product.ID,
		Name:     product.Name,
		Brand:    product.Brand,
		Price:    FormatPrice(product.Price),
		ImageURL: cardPlaceholder,
		Badges:   Badges(product),
	}
	if product.OriginalPrice.Valid {
		view.OriginalPrice = FormatPrice(product.OriginalPrice.Decimal)
	}
	if pct, ok := DiscountPercentage(product.Price, product.OriginalPrice); ok {
		view.DiscountPercentage = &pct
	}
	if images := p.images(product); len(images) > 0 {
		view.ImageURL = images[0]
	}
	if product.Rating.Valid {
		view.Rating = product.Rating.Decimal.StringFixed(1)
	}
	return view
}

func (p *Presenter) Products(products []catalogapi.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, product := range products {
		out = append(out, p.Product(product))
	}
	return out
}

func (p *Presenter) Detail(product catalogapi.Product) DetailView {
	view := DetailView{
		ProductView:   p.Product(product),
		Images:        p.images(product),
		SelectedImage: detailPlaceholder,
		Sizes:         make([]SizeView, 0, len(product.Sizes)),
		Attributes:    attributes(product),
		Description:   strings.TrimSpace(product.Description),
	}
	if len(view.Images) > 0 {
		view.SelectedImage = view.Images[0]
	}
	for _, size := range product.Sizes {
		view.Sizes = append(view.Sizes, SizeView{ID: size.ID, Name: size.Name})
	}
	return view
}

func (p *Presenter) images(product catalogapi.Product) []string {
	out := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		if resolved := p.ImageURL(img.Image); resolved != "" {
			out = append(out, resolved)
		}
	}
	return out
}

// Badges lists the product's marketing badges in display order.
func Badges(product catalogapi.Product) []Badge {
	flags := []struct {
		on    bool
		badge enums.ProductBadge
	}{
		{product.IsDesignOfWeek, enums.ProductBadgeDesignOfWeek},
		{product.IsCotton, enums.ProductBadgeCotton},
		{product.IsSpecialOffer, enums.ProductBadgeSpecialOffer},
		{product.BundleOffer, enums.ProductBadgeBundleOffer},
		{product.GlowInDark, enums.ProductBadgeGlowInDark},
	}
	out := make([]Badge, 0, len(flags))
	for _, f := range flags {
		if f.on {
			out = append(out, Badge{Code: f.badge, Label: f.badge.Label()})
		}
	}
	return out
}

func attributes(product catalogapi.Product) []Attribute {
	candidates := []Attribute{
		{Label: "Fit", Value: product.Fit},
		{Label: "Sleeve", Value: product.Sleeve},
		{Label: "Neck", Value: product.Neck},
		{Label: "Type", Value: product.Type},
	}
	out := make([]Attribute, 0, len(candidates))
	for _, attr := range candidates {
		attr.Value = strings.TrimSpace(attr.Value)
		if attr.Value != "" {
			out = append(out, attr)
		}
	}
	return out
}

// FilterGroups orders categories by name; values keep backend order.
func FilterGroups(options catalogapi.FilterOptionSet) []FilterGroup {
	categories := make([]string, 0, len(options))
	for category := range options {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	out := make([]FilterGroup, 0, len(categories))
	for _, category := range categories {
		values := append([]string(nil), options[category]...)
		if values == nil {
			values = []string{}
		}
		out = append(out, FilterGroup{Category: category, Values: values})
	}
	return out
}

// FormatPrice renders an amount with two decimal places.
func FormatPrice(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
