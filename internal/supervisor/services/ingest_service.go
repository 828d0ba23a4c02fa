// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package services

import (
	"context"
	"errors"
)

// IngestRouter is satisfied by *ingest.Router. Run must be callable again
// after it returns.
type IngestRouter interface {
	Run(ctx context.Context) error
}

// errRouterStopped makes suture restart a router that stopped on its own.
var errRouterStopped = errors.New("ingest router stopped unexpectedly")

// IngestRouterService supervises the watermill ingest router.
type IngestRouterService struct {
	router IngestRouter
}

// NewIngestRouterService wraps router.
func NewIngestRouterService(router IngestRouter) *IngestRouterService {
	return &IngestRouterService{router: router}
}

// Serve implements suture.Service.
func (s *IngestRouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	return errRouterStopped
}

func (s *IngestRouterService) String() string {
	return "ingest-router"
}
