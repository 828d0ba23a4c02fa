// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

/*
Package services adapts guildstats components to suture.Service.

  - HTTPServerService: ListenAndServe plus graceful Shutdown
  - IngestRouterService: the watermill ingest router, restarted when it
    stops on its own
  - MaintenanceService: gronx-scheduled housekeeping (DuckDB CHECKPOINT and
    badger value log GC)

Every Serve returns ctx.Err() after a requested shutdown, which tells
suture not to restart the service.
*/
package services
