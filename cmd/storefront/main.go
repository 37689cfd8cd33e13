package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront-session/api/controllers"
	"github.com/angelmondragon/storefront-session/api/routes"
	"github.com/angelmondragon/storefront-session/internal/browse"
	"github.com/angelmondragon/storefront-session/internal/cart"
	"github.com/angelmondragon/storefront-session/internal/catalog"
	"github.com/angelmondragon/storefront-session/internal/session"
	"github.com/angelmondragon/storefront-session/pkg/catalogapi"
	"github.com/angelmondragon/storefront-session/pkg/config"
	"github.com/angelmondragon/storefront-session/pkg/instance"
	"github.com/angelmondragon/storefront-session/pkg/logger"
	"github.com/angelmondragon/storefront-session/pkg/metrics"
	"github.com/angelmondragon/storefront-session/pkg/redis"
)

const serviceName = "storefront"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.App.IsProd() {
		cfg.Session.SecureCookie = true
	}

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "storefront stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	upstreamMetrics := metrics.NewUpstreamMetrics(reg)
	sessionMetrics := metrics.NewSessionMetrics(reg)

	pingers := map[string]controllers.Pinger{}
	var optionsCache catalog.OptionsCache = catalog.NewMemoryCache(cfg.Cache.FilterOptionsTTL)
	if cfg.Redis.Enabled() {
		var redisClient *redis.Client
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		optionsCache = catalog.NewRedisCache(redisClient, cfg.Cache.FilterOptionsTTL)
		pingers["redis"] = redisClient
	}

	apiClient, err := catalogapi.NewClient(cfg.Catalog.APIBaseURL,
		catalogapi.WithHTTPClient(&http.Client{Timeout: cfg.Catalog.Timeout}),
		catalogapi.WithMetrics(upstreamMetrics),
	)
	if err != nil {
		return err
	}

	presenter := catalog.NewPresenter(cfg.Catalog.ImageBaseURL)
	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Source:    apiClient,
		Presenter: presenter,
		Cache:     optionsCache,
		Metrics:   sessionMetrics,
		Logger:    logg,
	})
	if err != nil {
		return err
	}

	sessions, err := session.NewRegistry(session.RegistryParams{
		Logger:        logg,
		Metrics:       sessionMetrics,
		IdleTTL:       cfg.Session.IdleTTL,
		SweepInterval: cfg.Session.SweepInterval,
		Factory: func(string) *session.Visitor {
			return &session.Visitor{
				Browse: browse.NewSession(catalogService, logg, sessionMetrics),
				Cart:   cart.NewModel(apiClient.ForVisitor(), presenter, logg),
			}
		},
	})
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:   cfg,
			Logger:   logg,
			Catalog:  catalogService,
			Sessions: sessions,
			Gatherer: reg,
			Pingers:  pingers,
		}),
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"catalog":  cfg.Catalog.APIBaseURL,
		"redis":    cfg.Redis.Enabled(),
	})
	logg.Info(logCtx, "starting storefront server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := sessions.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down storefront server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(logCtx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
