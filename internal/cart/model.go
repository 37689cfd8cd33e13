package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront-session/internal/catalog"
	"github.com/angelmondragon/storefront-session/pkg/catalogapi"
	"github.com/angelmondragon/storefront-session/pkg/logger"
)

// Backend is the cart half of the catalog API, scoped to one visitor.
type Backend interface {
	FetchCart(ctx context.Context) ([]catalogapi.CartLine, error)
	AddToCart(ctx context.Context, req catalogapi.AddToCartRequest) error
	UpdateQuantity(ctx context.Context, lineID catalogapi.ID, quantity int) error
	RemoveLine(ctx context.Context, lineID catalogapi.ID) error
}

// LineView is a cart line ready for display.
type LineView struct {
	ID                 catalogapi.ID `json:"id"`
	ProductID          catalogapi.ID `json:"product_id"`
	Name               string        `json:"name"`
	Brand              string        `json:"brand,omitempty"`
	Size               string        `json:"size"`
	Quantity           int           `json:"quantity"`
	Price              string        `json:"price"`
	OriginalPrice      string        `json:"original_price,omitempty"`
	DiscountPercentage *int          `json:"discount_percentage,omitempty"`
	LineTotal          string        `json:"line_total"`
	ImageURL           string        `json:"image_url"`
}

// View is the cart page: lines in backend order plus the derived summary.
type View struct {
	Lines        []LineView `json:"lines"`
	ItemCount    int        `json:"item_count"`
	Subtotal     string     `json:"subtotal"`
	FreeDelivery bool       `json:"free_delivery"`
	Empty        bool       `json:"empty"`
}

// AddInput selects a product, size and quantity. A zero quantity means one.
type AddInput struct {
	ProductID catalogapi.ID
	Size      string
	Quantity  int
}

// Model is one visitor's cart read-through cache. Mutations are serialized
// and always followed by a refetch; the view is only ever built from what
// the backend returned.
type Model struct {
	backend   Backend
	presenter *catalog.Presenter
	logg      *logger.Logger

	mu sync.Mutex
}

func NewModel(backend Backend, presenter *catalog.Presenter, logg *logger.Logger) *Model {
	if logg == nil {
		logg = logger.Nop()
	}
	if presenter == nil {
		presenter = catalog.NewPresenter("")
	}
	return &Model{backend: backend, presenter: presenter, logg: logg}
}

func (m *Model) Refresh(ctx context.Context) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refetch(ctx)
}

// Add validates locally before any network call: a missing size never
// reaches the backend.
func (m *Model) Add(ctx context.Context, input AddInput) (View, error) {
	if input.Quantity == 0 {
		input.Quantity = MinQuantity
	}
	input.Size = strings.TrimSpace(input.Size)
	if err := validateInput(addInput{
		ProductID: strings.TrimSpace(input.ProductID.String()),
		Size:      input.Size,
		Quantity:  input.Quantity,
	}); err != nil {
		return View{}, err
	}
	return m.mutate(ctx, "add_to_cart", func(ctx context.Context) error {
		return m.backend.AddToCart(ctx, catalogapi.AddToCartRequest{
			ProductID: input.ProductID,
			Size:      input.Size,
			Quantity:  input.Quantity,
		})
	})
}

func (m *Model) ChangeQuantity(ctx context.Context, lineID catalogapi.ID, quantity int) (View, error) {
	if err := validateInput(quantityInput{Quantity: quantity}); err != nil {
		return View{}, err
	}
	return m.mutate(ctx, "update_quantity", func(ctx context.Context) error {
		return m.backend.UpdateQuantity(ctx, lineID, quantity)
	})
}

func (m *Model) Remove(ctx context.Context, lineID catalogapi.ID) (View, error) {
	return m.mutate(ctx, "remove_line", func(ctx context.Context) error {
		return m.backend.RemoveLine(ctx, lineID)
	})
}

func (m *Model) mutate(ctx context.Context, op string, call func(context.Context) error) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	if err := call(ctx); err != nil {
		logCtx := m.logg.WithField(m.logg.WithUpstream(ctx, op), "error", err.Error())
		m.logg.Warn(logCtx, "cart mutation failed")
		return View{}, err
	}
	return m.refetch(ctx)
}

// refetch rebuilds the view from the backend. A failed fetch yields no view
// at all so no totals are derived from stale lines. Callers hold m.mu.
func (m *Model) refetch(ctx context.Context) (View, error) {
	lines, err := m.backend.FetchCart(ctx)
	if err != nil {
		m.logg.Error(ctx, "cart refresh failed", err)
		return View{}, err
	}
	return m.build(lines), nil
}

func (m *Model) build(lines []catalogapi.CartLine) View {
	summary := Summarize(lines)
	view := View{
		Lines:        make([]LineView, 0, len(lines)),
		Subtotal:     catalog.FormatPrice(summary.Subtotal),
		FreeDelivery: summary.FreeDelivery,
		Empty:        len(lines) == 0,
	}
	for _, line := range lines {
		card := m.presenter.Product(line.Product)
		view.Lines = append(view.Lines, LineView{
			ID:                 line.ID,
			ProductID:          line.Product.ID,
			Name:               card.Name,
			Brand:              card.Brand,
			Size:               line.Size,
			Quantity:           line.Quantity,
			Price:              card.Price,
			OriginalPrice:      card.OriginalPrice,
			DiscountPercentage: card.DiscountPercentage,
			LineTotal:          catalog.FormatPrice(LineTotal(line)),
			ImageURL:           card.ImageURL,
		})
		view.ItemCount += line.Quantity
	}
	return view
}
