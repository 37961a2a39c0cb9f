// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the background jobs of the registry: publishing
// languages whose scheduled time has come and pruning the event log.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/servreg-go/internal/model"
)

// Job names.
const (
	JobPublishDue  = "publish-due"
	JobPruneEvents = "prune-events"
)

// jobTimeout bounds one run of a job.
const jobTimeout = 5 * time.Minute

// DuePublisher publishes the languages whose publishing time has passed.
type DuePublisher interface {
	PublishDue(ctx context.Context) (int, error)
}

// EventLog is the part of the event service the jobs use.
type EventLog interface {
	LogInfo(ctx context.Context, category, message string, metadata map[string]any) error
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Config holds the job schedules.
type Config struct {
	PublishSchedule string
	PruneSchedule   string
	// EventRetention is the age past which events are pruned. Zero
	// disables the prune job.
	EventRetention time.Duration
}

// Scheduler handles scheduled tasks like publishing languages.
type Scheduler struct {
	cron      *cron.Cron
	registry  *Registry
	publisher DuePublisher
	events    EventLog
	cfg       Config
	logger    *slog.Logger
}

// New creates a new scheduler instance.
func New(publisher DuePublisher, events EventLog, cfg Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New()
	return &Scheduler{
		cron:      c,
		registry:  NewRegistry(c, logger),
		publisher: publisher,
		events:    events,
		cfg:       cfg,
		logger:    logger,
	}
}

// Registry returns the job registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if err := s.registry.Register(JobPublishDue,
		"Publishes languages whose scheduled publishing time has passed",
		s.cfg.PublishSchedule, s.publishDue); err != nil {
		return err
	}
	if s.cfg.EventRetention > 0 {
		if err := s.registry.Register(JobPruneEvents,
			"Deletes event log entries older than the retention period",
			s.cfg.PruneSchedule, s.pruneEvents); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// publishDue publishes due languages and records the run in the event log.
func (s *Scheduler) publishDue() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.publisher.PublishDue(ctx)
	if n > 0 {
		s.logger.Info("published scheduled versions", "count", n)
		if logErr := s.events.LogInfo(ctx, model.EventCategoryPublishing,
			"Scheduled languages published", map[string]any{"versions": n}); logErr != nil {
			s.logger.Warn("failed to log scheduled publish event", "error", logErr)
		}
	}
	return err
}

// pruneEvents deletes events older than the retention period.
func (s *Scheduler) pruneEvents() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.events.DeleteOldEvents(ctx, s.cfg.EventRetention)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned old events", "count", n, "retention", s.cfg.EventRetention)
	}
	return nil
}
