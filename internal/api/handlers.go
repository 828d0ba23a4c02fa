// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package api

import (
	"context"
	"time"

	"github.com/tomtom215/guildstats/internal/analytics"
	"github.com/tomtom215/guildstats/internal/identity"
	"github.com/tomtom215/guildstats/internal/ingest"
	"github.com/tomtom215/guildstats/internal/kvstore"
)

// PartitionManager is the partition lifecycle side of the message store.
type PartitionManager interface {
	CreatePartition(ctx context.Context, guildID int64) error
	CreatePartitionStrict(ctx context.Context, guildID int64) error
	DropPartition(ctx context.Context, guildID int64) error
	Partitions() []int64
	Ping(ctx context.Context) error
}

// Handler serves every API endpoint.
type Handler struct {
	partitions PartitionManager
	analytics  *analytics.Service
	resolver   *identity.Resolver
	settings   *kvstore.Store
	writer     *ingest.Writer
	version    string
	startTime  time.Time
}

// HandlerDeps bundles the Handler's collaborators.
type HandlerDeps struct {
	Partitions PartitionManager
	Analytics  *analytics.Service
	Resolver   *identity.Resolver
	Settings   *kvstore.Store
	Writer     *ingest.Writer
	Version    string
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		partitions: deps.Partitions,
		analytics:  deps.Analytics,
		resolver:   deps.Resolver,
		settings:   deps.Settings,
		writer:     deps.Writer,
		version:    deps.Version,
		startTime:  time.Now(),
	}
}
