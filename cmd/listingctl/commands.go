package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"property_listing/internal/adapters/authsvc"
	"property_listing/internal/adapters/observability"
	redisad "property_listing/internal/adapters/redis"
	"property_listing/internal/app"
	"property_listing/internal/domain"
	"property_listing/internal/seed"
	"property_listing/internal/shared"
	"property_listing/internal/storage/sqlstore"
)

// setup loads config, sets the global logger and opens the database.
func setup(cmd *cobra.Command) (shared.Config, *gorm.DB, error) {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if d, _ := cmd.Flags().GetString("driver"); d != "" {
		cfg.DBDriver = d
	}
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	db, err := sqlstore.Open(cfg.DBDriver, cfg.DatabaseDSN, 4)
	if err != nil {
		return cfg, nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	return cfg, db, nil
}

func dbFlags(cmd *cobra.Command) {
	cmd.Flags().String("driver", "", "Database driver (mysql, postgres, sqlite); defaults to DB_DRIVER")
	cmd.Flags().String("dsn", "", "Database DSN; defaults to DATABASE_DSN")
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup(cmd)
			if err != nil {
				return err
			}
			defer sqlstore.New(db).Close()

			if err := sqlstore.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info().Str("driver", cfg.DBDriver).Msg("schema up to date")
			return nil
		},
	}
	dbFlags(cmd)
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert missing amenities and safety features",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup(cmd)
			if err != nil {
				return err
			}
			store := sqlstore.New(db)
			defer store.Close()

			file, _ := cmd.Flags().GetString("file")
			catalog, err := seed.Load(file)
			if err != nil {
				return err
			}

			var cache domain.Cache
			if cfg.RedisAddr != "" {
				rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
				defer rc.Close()
				cache = rc
			}
			res, err := app.NewCatalogService(store, cache, cfg.CacheTTL).
				Seed(cmd.Context(), catalog.Amenities, catalog.SafetyFeatures)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "amenities: %d new of %d\nsafety features: %d new of %d\n",
				res.Amenities, len(catalog.Amenities), res.SafetyFeatures, len(catalog.SafetyFeatures))
			return nil
		},
	}
	dbFlags(cmd)
	cmd.Flags().String("file", "", "Catalog YAML file; defaults to the bundled catalog")
	return cmd
}

func hostSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hostsync",
		Short: "Refresh host name, email and avatar on properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup(cmd)
			if err != nil {
				return err
			}
			store := sqlstore.New(db)
			defer store.Close()

			client, err := authsvc.New(cfg.AuthBaseURL, cfg.AuthTimeout, cfg.AuthRPS, nil)
			if err != nil {
				return err
			}
			svc := app.NewHostSyncService(client, store)

			if raw, _ := cmd.Flags().GetString("host"); raw != "" {
				hostID, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("--host must be a UUID: %w", err)
				}
				n, err := svc.SyncHost(cmd.Context(), hostID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "host %s: %d properties updated\n", hostID, n)
				return nil
			}

			maxAge, _ := cmd.Flags().GetDuration("max-age")
			if maxAge <= 0 {
				maxAge = cfg.HostSyncMaxAge
			}
			res, err := svc.SyncStale(cmd.Context(), maxAge, cfg.HostSyncWorkers, cfg.HostSyncLimit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hosts: %d updated: %d missing: %d failed: %d properties: %d\n",
				res.Hosts, res.Updated, res.Missing, res.Failed, res.Properties)
			return nil
		},
	}
	dbFlags(cmd)
	cmd.Flags().String("host", "", "Sync a single host id")
	cmd.Flags().Duration("max-age", 0, "Sync hosts whose copy is older than this; defaults to HOSTSYNC_MAX_AGE_HOURS")
	return cmd
}
