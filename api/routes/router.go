package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-session/api/controllers"
	"github.com/angelmondragon/storefront-session/api/middleware"
	"github.com/angelmondragon/storefront-session/internal/catalog"
	"github.com/angelmondragon/storefront-session/internal/session"
	"github.com/angelmondragon/storefront-session/pkg/config"
	"github.com/angelmondragon/storefront-session/pkg/logger"
)

// Params wires the router dependencies.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Catalog  catalog.Service
	Sessions *session.Registry
	Gatherer prometheus.Gatherer
	Pingers  map[string]controllers.Pinger
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Pingers))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/products/{productId}", controllers.ProductDetail(p.Catalog, logg))
		r.Post("/delivery/check", controllers.DeliveryCheck(logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(p.Sessions, cfg.Session, logg))

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/", controllers.CatalogView(logg))
				r.Post("/filters", controllers.CatalogToggleFilter(logg))
				r.Put("/price", controllers.CatalogSetPriceRange(logg))
				r.Put("/sort", controllers.CatalogSetSort(logg))
				r.Post("/reset", controllers.CatalogReset(logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartView(logg))
				r.Post("/", controllers.CartAdd(logg))
				r.Patch("/lines/{lineId}", controllers.CartUpdateLine(logg))
				r.Delete("/lines/{lineId}", controllers.CartRemoveLine(logg))
			})
		})
	})

	return r
}
