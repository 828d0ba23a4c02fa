// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tomtom215/guildstats/internal/logging"
)

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	Database      bool   `json:"database"`
	Partitions    int    `json:"partitions"`
	WriteBreaker  string `json:"write_breaker,omitempty"`
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// handleHealth reports liveness. A failed database ping or an open write
// breaker degrades the status and answers 503.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:        "ok",
		Version:       h.version,
		Database:      true,
		Partitions:    len(h.partitions.Partitions()),
		Uptime:        strings.TrimSpace(humanize.RelTime(h.startTime, time.Now(), "", "")),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}
	if err := h.partitions.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check database ping failed")
		status.Database = false
		status.Status = "degraded"
	}
	if h.writer != nil {
		status.WriteBreaker = h.writer.BreakerState()
		if status.WriteBreaker == "open" {
			status.Status = "degraded"
		}
	}

	if status.Status != "ok" {
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: status, Meta: rw.meta()})
		return
	}
	rw.Success(status)
}
