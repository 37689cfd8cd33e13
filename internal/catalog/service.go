package catalog

import (
	"context"
	"net/url"

	"github.com/angelmondragon/storefront-session/pkg/catalogapi"
	pkgerrors "github.com/angelmondragon/storefront-session/pkg/errors"
	"github.com/angelmondragon/storefront-session/pkg/logger"
	"github.com/angelmondragon/storefront-session/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

const filterOptionsFlight = "filter_options"

// Source is the slice of the catalog API used for browsing.
type Source interface {
	FetchProducts(ctx context.Context, query url.Values) ([]catalogapi.Product, error)
	FetchProduct(ctx context.Context, id catalogapi.ID) (*catalogapi.Product, error)
	FetchFilterOptions(ctx context.Context) (catalogapi.FilterOptionSet, error)
}

// Service exposes catalog read operations as view-models.
type Service interface {
	Products(ctx context.Context, query url.Values) ([]ProductView, error)
	ProductDetail(ctx context.Context, id catalogapi.ID) (*DetailView, error)
	FilterOptions(ctx context.Context) ([]FilterGroup, error)
}

type service struct {
	source    Source
	presenter *Presenter
	cache     OptionsCache
	flight    singleflight.Group
	metrics   *metrics.SessionMetrics
	logg      *logger.Logger
}

// ServiceParams wires the catalog service dependencies.
type ServiceParams struct {
	Source    Source
	Presenter *Presenter
	Cache     OptionsCache
	Metrics   *metrics.SessionMetrics
	Logger    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog source required")
	}
	if params.Presenter == nil {
		params.Presenter = NewPresenter("")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &service{
		source:    params.Source,
		presenter: params.Presenter,
		cache:     params.Cache,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

func (s *service) Products(ctx context.Context, query url.Values) ([]ProductView, error) {
	products, err := s.source.FetchProducts(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.presenter.Products(products), nil
}

func (s *service) ProductDetail(ctx context.Context, id catalogapi.ID) (*DetailView, error) {
	product, err := s.source.FetchProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.presenter.Detail(*product)
	return &view, nil
}

// FilterOptions reads through the cache. Concurrent misses share one
// upstream call. Cache failures are logged and bypassed.
func (s *service) FilterOptions(ctx context.Context) ([]FilterGroup, error) {
	if s.cache != nil {
		options, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logg.Error(ctx, "filter options cache read failed", err)
		}
		s.metrics.IncCacheLookup(ok)
		if ok {
			return FilterGroups(options), nil
		}
	}

	result, err, _ := s.flight.Do(filterOptionsFlight, func() (any, error) {
		options, err := s.source.FetchFilterOptions(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, options); err != nil {
				s.logg.Error(ctx, "filter options cache write failed", err)
			}
		}
		return options, nil
	})
	if err != nil {
		return nil, err
	}
	options, _ := result.(catalogapi.FilterOptionSet)
	return FilterGroups(options), nil
}
