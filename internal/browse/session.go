package browse

import (
	"context"
	"net/url"
	"sync"

	"github.com/angelmondragon/storefront-session/internal/catalog"
	"github.com/angelmondragon/storefront-session/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-session/pkg/errors"
	"github.com/angelmondragon/storefront-session/pkg/logger"
	"github.com/angelmondragon/storefront-session/pkg/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Catalog is the read side the session refreshes from.
type Catalog interface {
	Products(ctx context.Context, query url.Values) ([]catalog.ProductView, error)
	FilterOptions(ctx context.Context) ([]catalog.FilterGroup, error)
}

// View is the catalog page as last applied.
type View struct {
	Products      []catalog.ProductView `json:"products"`
	FilterOptions []catalog.FilterGroup `json:"filter_options"`
	ActiveFilters map[string]string     `json:"active_filters"`
	PriceRange    PriceRange            `json:"price_range"`
	Sort          enums.SortKey         `json:"sort"`
	Error         *ErrorView            `json:"error,omitempty"`
	Revision      uint64                `json:"revision"`
}

// ErrorView is the page-level message shown after a failed refresh.
type ErrorView struct {
	Code    pkgerrors.Code `json:"code"`
	Message string         `json:"message"`
}

// Session owns one visitor's browse state. Every mutation triggers a refresh
// and only the response of the most recent refresh is ever applied.
type Session struct {
	catalog Catalog
	logg    *logger.Logger
	metrics *metrics.SessionMetrics

	mu       sync.Mutex
	state    State
	latest   uint64
	applied  uint64
	products []catalog.ProductView
	options  []catalog.FilterGroup
	failure  *ErrorView
}

func NewSession(c Catalog, logg *logger.Logger, m *metrics.SessionMetrics) *Session {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Session{
		catalog:  c,
		logg:     logg,
		metrics:  m,
		state:    NewState(),
		products: []catalog.ProductView{},
		options:  []catalog.FilterGroup{},
	}
}

// Load returns the current view, refreshing first if nothing was requested yet.
func (s *Session) Load(ctx context.Context) View {
	s.mu.Lock()
	pending := s.latest == 0
	s.mu.Unlock()
	if !pending {
		return s.View()
	}
	return s.mutate(ctx, func(*State) {})
}

func (s *Session) Refresh(ctx context.Context) View {
	return s.mutate(ctx, func(*State) {})
}

func (s *Session) SetFilter(ctx context.Context, category, value string) View {
	return s.mutate(ctx, func(st *State) { st.SetFilter(category, value) })
}

func (s *Session) SetPriceRange(ctx context.Context, min, max decimal.Decimal) View {
	return s.mutate(ctx, func(st *State) { st.SetPriceRange(min, max) })
}

func (s *Session) SetSort(ctx context.Context, key enums.SortKey) View {
	return s.mutate(ctx, func(st *State) { st.SetSort(key) })
}

func (s *Session) Reset(ctx context.Context) View {
	return s.mutate(ctx, func(st *State) { st.Reset() })
}

// State returns a copy of the current selection.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Products:      append(make([]catalog.ProductView, 0, len(s.products)), s.products...),
		FilterOptions: append(make([]catalog.FilterGroup, 0, len(s.options)), s.options...),
		ActiveFilters: s.state.Filters(),
		PriceRange:    s.state.Price(),
		Sort:          s.state.Sort(),
		Error:         s.failure,
		Revision:      s.applied,
	}
}

func (s *Session) mutate(ctx context.Context, change func(*State)) View {
	s.mu.Lock()
	change(&s.state)
	snapshot := s.state.Clone()
	s.latest++
	token := s.latest
	s.mu.Unlock()

	// The refresh outlives a disconnected caller; staleness alone decides
	// whether its result is used.
	s.refresh(context.WithoutCancel(ctx), token, snapshot)
	return s.View()
}

func (s *Session) refresh(ctx context.Context, token uint64, snapshot State) {
	var (
		products   []catalog.ProductView
		options    []catalog.FilterGroup
		productErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		if snapshot.Price().Inverted() {
			products = []catalog.ProductView{}
			return nil
		}
		products, productErr = s.catalog.Products(ctx, snapshot.BuildQuery())
		return nil
	})
	g.Go(func() error {
		groups, err := s.catalog.FilterOptions(ctx)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "filter options unavailable")
			groups = []catalog.FilterGroup{}
		}
		options = groups
		return nil
	})
	_ = g.Wait()

	s.apply(ctx, token, products, options, productErr)
}

func (s *Session) apply(ctx context.Context, token uint64, products []catalog.ProductView, options []catalog.FilterGroup, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.latest {
		s.metrics.IncStale()
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"token": token, "latest": s.latest}), "discarding stale catalog response")
		return
	}

	s.applied = token
	s.options = options
	if err != nil {
		s.products = []catalog.ProductView{}
		s.failure = errorView(err)
		s.metrics.IncRefresh("error")
		s.logg.Error(ctx, "catalog refresh failed", err)
		return
	}
	if products == nil {
		products = []catalog.ProductView{}
	}
	s.products = products
	s.failure = nil
	s.metrics.IncRefresh("ok")
}

func errorView(err error) *ErrorView {
	if typed := pkgerrors.As(err); typed != nil {
		meta := pkgerrors.MetadataFor(typed.Code())
		message := typed.Message()
		if !meta.DetailsAllowed && meta.PublicMessage != "" {
			message = meta.PublicMessage
		}
		return &ErrorView{Code: typed.Code(), Message: message}
	}
	meta := pkgerrors.MetadataFor(pkgerrors.CodeNetwork)
	return &ErrorView{Code: pkgerrors.CodeNetwork, Message: meta.PublicMessage}
}
