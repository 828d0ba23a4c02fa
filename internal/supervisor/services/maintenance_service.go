// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/metrics"
)

// DefaultMaintenanceCron runs maintenance daily at 03:00 UTC.
const DefaultMaintenanceCron = "0 3 * * *"

// MaintenanceTask is one named housekeeping step.
type MaintenanceTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// MaintenanceService runs its tasks on a cron schedule. A failing task is
// logged and counted; it never stops the schedule or the other tasks.
type MaintenanceService struct {
	cron  string
	tasks []MaintenanceTask

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewMaintenanceService schedules tasks with a gronx cron expression.
func NewMaintenanceService(cron string, tasks ...MaintenanceTask) (*MaintenanceService, error) {
	if cron == "" {
		cron = DefaultMaintenanceCron
	}
	if !gronx.IsValid(cron) {
		return nil, fmt.Errorf("invalid maintenance cron expression %q", cron)
	}
	return &MaintenanceService{
		cron:  cron,
		tasks: tasks,
		now:   time.Now,
		after: time.After,
	}, nil
}

// Next returns the first tick strictly after t.
func (s *MaintenanceService) Next(t time.Time) (time.Time, error) {
	return gronx.NextTickAfter(s.cron, t.UTC(), false)
}

// Serve implements suture.Service.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	logger := logging.WithComponent("maintenance")
	logger.Info().Str("cron", s.cron).Int("tasks", len(s.tasks)).Msg("Maintenance scheduler started")

	for {
		next, err := s.Next(s.now())
		if err != nil {
			return fmt.Errorf("maintenance schedule: %w", err)
		}
		logger.Debug().Time("next_run", next).Msg("Next maintenance run scheduled")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(time.Until(next)):
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs every task in order and returns how many failed.
func (s *MaintenanceService) RunOnce(ctx context.Context) int {
	logger := logging.WithComponent("maintenance")
	failed := 0
	for _, task := range s.tasks {
		if ctx.Err() != nil {
			return failed
		}
		start := time.Now()
		err := task.Run(ctx)
		metrics.RecordMaintenanceRun(task.Name, err)
		if err != nil {
			failed++
			logger.Error().Err(err).Str("task", task.Name).Msg("Maintenance task failed")
			continue
		}
		logger.Info().Str("task", task.Name).Dur("duration", time.Since(start)).Msg("Maintenance task completed")
	}
	return failed
}

func (s *MaintenanceService) String() string {
	return "maintenance"
}
