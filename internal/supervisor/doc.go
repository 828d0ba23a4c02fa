// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

/*
Package supervisor runs the long-lived parts of guildstats under a suture v4
supervisor tree.

	RootSupervisor ("guildstats")
	├── DataSupervisor ("data-layer")
	│   └── MaintenanceService (DuckDB checkpoint, badger value log GC)
	├── MessagingSupervisor ("messaging-layer")
	│   └── IngestRouterService (if ingest.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's backoff. Supervisor events are
logged through sutureslog into the zerolog-backed slog handler.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(&cfg.Supervisor))
	tree.AddDataService(services.NewMaintenanceService(cfg.Maintenance.Cron, tasks...))
	tree.AddMessagingService(services.NewIngestRouterService(router))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)

The wrappers themselves live in the services subpackage.
*/
package supervisor
