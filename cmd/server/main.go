// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/guildstats/internal/analytics"
	"github.com/tomtom215/guildstats/internal/api"
	"github.com/tomtom215/guildstats/internal/auth"
	"github.com/tomtom215/guildstats/internal/authz"
	"github.com/tomtom215/guildstats/internal/config"
	"github.com/tomtom215/guildstats/internal/database"
	"github.com/tomtom215/guildstats/internal/identity"
	"github.com/tomtom215/guildstats/internal/ingest"
	"github.com/tomtom215/guildstats/internal/kvstore"
	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/supervisor"
	"github.com/tomtom215/guildstats/internal/supervisor/services"
	"github.com/tomtom215/guildstats/internal/textanalysis"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	hashKey := flag.String("hash-key", "", "print the bcrypt hash for an API key and exit")
	flag.Parse()

	if *hashKey != "" {
		hash, err := auth.HashKey(*hashKey)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Guildstats exited with error")
	}
}

//nolint:gocyclo // Sequential wiring of every component
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Bool("auth_disabled", cfg.Security.AuthDisabled).
		Bool("ingest_enabled", cfg.Ingest.Enabled).
		Msg("Starting guildstats")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Int("partitions", len(db.Partitions())).Msg("Database initialized")

	kv, err := kvstore.Open(&cfg.KVStore)
	if err != nil {
		return fmt.Errorf("open kvstore: %w", err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing kvstore")
		}
	}()

	resolver := identity.NewResolver(kv, db)
	analyzer := textanalysis.NewAnalyzer(&cfg.Analytics)
	analyticsSvc := analytics.NewService(db, resolver, kv, analyzer, &cfg.Analytics)
	writer := ingest.NewWriter(db, kv, resolver, &cfg.Ingest)

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return fmt.Errorf("create enforcer: %w", err)
	}
	defer enforcer.Close()

	authenticator, err := api.NewAuthenticator(&cfg.Security)
	if err != nil {
		return fmt.Errorf("create authenticator: %w", err)
	}
	if authenticator == nil {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_DISABLED=true): every request runs as admin")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	handler := api.NewHandler(api.HandlerDeps{
		Partitions: db,
		Analytics:  analyticsSvc,
		Resolver:   resolver,
		Settings:   kv,
		Writer:     writer,
		Version:    version,
	})
	router := api.NewRouter(api.RouterDeps{
		Handler:       handler,
		Middleware:    api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)),
		Authenticator: authenticator,
		Enforcer:      enforcer,
		Compress:      cfg.Server.Compression,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(&cfg.Supervisor))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if cfg.Maintenance.Enabled {
		maintenance, err := services.NewMaintenanceService(cfg.Maintenance.Cron,
			services.MaintenanceTask{Name: "duckdb-checkpoint", Run: db.Checkpoint},
			services.MaintenanceTask{Name: "badger-gc", Run: func(context.Context) error { return kv.RunGC() }},
		)
		if err != nil {
			return fmt.Errorf("create maintenance service: %w", err)
		}
		tree.AddDataService(maintenance)
		logging.Info().Str("cron", cfg.Maintenance.Cron).Msg("Maintenance service added")
	}

	if cfg.Ingest.Enabled {
		transport, err := ingest.NewTransport(&cfg.Ingest)
		if err != nil {
			return fmt.Errorf("create ingest transport: %w", err)
		}
		defer func() {
			if err := transport.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing ingest transport")
			}
		}()
		ingestRouter := ingest.NewRouter(&cfg.Ingest, transport, writer)
		tree.AddMessagingService(services.NewIngestRouterService(ingestRouter))
		logging.Info().
			Str("transport", cfg.Ingest.Transport).
			Str("topic_prefix", cfg.Ingest.TopicPrefix).
			Msg("Ingest router added")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Guildstats stopped gracefully")
	return nil
}
