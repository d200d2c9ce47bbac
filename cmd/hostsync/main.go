package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"property_listing/internal/adapters/authsvc"
	"property_listing/internal/adapters/observability"
	"property_listing/internal/app"
	"property_listing/internal/shared"
	"property_listing/internal/storage/sqlstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("auth", cfg.AuthBaseURL).
		Int("workers", cfg.HostSyncWorkers).
		Dur("max_age", cfg.HostSyncMaxAge).
		Msg("host sync starting")

	db, err := sqlstore.Open(cfg.DBDriver, cfg.DatabaseDSN, cfg.HostSyncWorkers+1)
	if err != nil {
		log.Fatal().Err(err).Msg("database open failed")
	}
	store := sqlstore.New(db)
	defer store.Close()

	client, err := authsvc.New(cfg.AuthBaseURL, cfg.AuthTimeout, cfg.AuthRPS, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth client")
	}

	start := time.Now()
	res, err := app.NewHostSyncService(client, store).SyncStale(ctx, cfg.HostSyncMaxAge, cfg.HostSyncWorkers, cfg.HostSyncLimit)
	observability.ObserveHostSync("updated", int(res.Updated))
	observability.ObserveHostSync("missing", res.Missing)
	observability.ObserveHostSync("failed", res.Failed)
	if err != nil {
		log.Error().Err(err).Msg("host sync aborted")
	}
	log.Info().
		Int("hosts", res.Hosts).
		Int64("updated", res.Updated).
		Int("missing", res.Missing).
		Int("failed", res.Failed).
		Int64("properties", res.Properties).
		Dur("took", time.Since(start)).
		Msg("host sync completed")
	if err != nil || res.Failed > 0 {
		os.Exit(1)
	}
}
