package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"property_listing/internal/adapters/authsvc"
	server "property_listing/internal/adapters/http_server"
	"property_listing/internal/adapters/mediastore"
	"property_listing/internal/adapters/observability"
	redisad "property_listing/internal/adapters/redis"
	"property_listing/internal/app"
	"property_listing/internal/domain"
	"property_listing/internal/shared"
	"property_listing/internal/storage/sqlstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sqlstore.Open(cfg.DBDriver, cfg.DatabaseDSN, cfg.DBMaxOpen)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database open failed")
	}
	store := sqlstore.New(db)
	defer store.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")

	// cache is optional; the catalog reads through when it is absent
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; catalog cache disabled")
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	media, closeMedia, err := openMedia(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.MediaBackend).Msg("media store init failed")
	}
	defer closeMedia()

	var transport http.RoundTripper
	if cfg.OTelEnabled {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	auth, err := authsvc.New(cfg.AuthBaseURL, cfg.AuthTimeout, cfg.AuthRPS, transport)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth client")
	}

	// http
	srv := server.New(server.Options{Timeout: cfg.RequestTimeout, Tracing: cfg.OTelEnabled})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(cfg.APIPrefix, &server.Handlers{
		Properties:  app.NewPropertyService(store),
		Reviews:     app.NewReviewService(store),
		Experiences: app.NewExperienceService(store),
		Vendors:     app.NewVendorsService(store),
		Catalog:     app.NewCatalogService(store, cache, cfg.CacheTTL),
		Images:      app.NewImageService(media, cfg.MaxUploadBytes, cfg.AllowedImageTypes),
		Auth:        auth,
		Pages:       server.PageConfig{Default: cfg.DefaultPageSize, Max: cfg.MaxPageSize},
		Ready:       store.Ping,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("prefix", cfg.APIPrefix).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

func openMedia(ctx context.Context, cfg shared.Config) (domain.ImageStore, func(), error) {
	switch cfg.MediaBackend {
	case "gridfs":
		g, err := mediastore.NewGridFS(ctx, cfg.MongoURI, cfg.MongoDB, cfg.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { _ = g.Close(context.Background()) }, nil
	default:
		l, err := mediastore.NewLocal(cfg.MediaDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return l, func() {}, nil
	}
}
