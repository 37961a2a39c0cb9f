// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Registry errors.
var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobRunning  = errors.New("job is already running")
)

// registeredJob holds metadata about a registered cron job.
type registeredJob struct {
	name            string
	description     string
	defaultSchedule string
	schedule        string // effective schedule
	entryID         cron.EntryID
	run             func() error

	running sync.Mutex
	lastErr error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DefaultSchedule string    `json:"default_schedule"`
	Schedule        string    `json:"schedule"`
	IsOverridden    bool      `json:"is_overridden"`
	LastRun         time.Time `json:"last_run,omitzero"`
	NextRun         time.Time `json:"next_run,omitzero"`
	LastError       string    `json:"last_error,omitempty"`
}

// Registry keeps the jobs of one cron instance. A job never runs twice at
// the same time, whether started by cron or by TriggerNow.
type Registry struct {
	cron   *cron.Cron
	logger *slog.Logger
	mu     sync.RWMutex
	jobs   map[string]*registeredJob
}

// NewRegistry creates a registry over a cron instance.
func NewRegistry(c *cron.Cron, logger *slog.Logger) *Registry {
	return &Registry{
		cron:   c,
		logger: logger,
		jobs:   make(map[string]*registeredJob),
	}
}

// ParseSchedule validates a standard five-field cron expression or a
// descriptor such as "@every 1m".
func ParseSchedule(spec string) (cron.Schedule, error) {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return s, nil
}

// Register adds a job to the cron instance under the given schedule.
func (r *Registry) Register(name, description, schedule string, run func() error) error {
	if _, err := ParseSchedule(schedule); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[name]; ok {
		return fmt.Errorf("job %q is already registered", name)
	}
	job := &registeredJob{
		name:            name,
		description:     description,
		defaultSchedule: schedule,
		schedule:        schedule,
		run:             run,
	}
	id, err := r.cron.AddFunc(schedule, func() { _ = r.execute(job) })
	if err != nil {
		return fmt.Errorf("scheduling %q: %w", name, err)
	}
	job.entryID = id
	r.jobs[name] = job

	r.logger.Debug("registered scheduled job", "name", name, "schedule", schedule)
	return nil
}

// execute runs a job unless it is already running.
func (r *Registry) execute(job *registeredJob) error {
	if !job.running.TryLock() {
		r.logger.Debug("skipping scheduled job, still running", "name", job.name)
		return fmt.Errorf("%s: %w", job.name, ErrJobRunning)
	}
	defer job.running.Unlock()

	err := job.run()

	r.mu.Lock()
	job.lastErr = err
	r.mu.Unlock()
	if err != nil {
		r.logger.Error("scheduled job failed", "name", job.name, "error", err)
	}
	return err
}

// List returns all registered jobs sorted by name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]JobInfo, 0, len(r.jobs))
	for _, job := range r.jobs {
		info := JobInfo{
			Name:            job.name,
			Description:     job.description,
			DefaultSchedule: job.defaultSchedule,
			Schedule:        job.schedule,
			IsOverridden:    job.schedule != job.defaultSchedule,
		}
		if job.lastErr != nil {
			info.LastError = job.lastErr.Error()
		}

		entry := r.cron.Entry(job.entryID)
		info.NextRun = entry.Next
		info.LastRun = entry.Prev

		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// TriggerNow runs a job immediately and returns its error.
func (r *Registry) TriggerNow(name string) error {
	r.mu.RLock()
	job, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrJobNotFound)
	}

	r.logger.Info("manually triggering job", "name", name)
	return r.execute(job)
}

// UpdateSchedule moves a job to a new schedule.
func (r *Registry) UpdateSchedule(name, newSchedule string) error {
	if _, err := ParseSchedule(newSchedule); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrJobNotFound)
	}
	if err := r.reschedule(job, newSchedule); err != nil {
		return err
	}

	r.logger.Info("updated job schedule", "name", name, "schedule", newSchedule)
	return nil
}

// ResetSchedule restores the schedule a job was registered with.
func (r *Registry) ResetSchedule(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrJobNotFound)
	}
	if job.schedule == job.defaultSchedule {
		return nil
	}
	if err := r.reschedule(job, job.defaultSchedule); err != nil {
		return err
	}

	r.logger.Info("reset job schedule to default", "name", name, "schedule", job.defaultSchedule)
	return nil
}

// reschedule swaps the cron entry of a job. The caller holds r.mu.
func (r *Registry) reschedule(job *registeredJob, schedule string) error {
	r.cron.Remove(job.entryID)
	id, err := r.cron.AddFunc(schedule, func() { _ = r.execute(job) })
	if err != nil {
		// Re-add with old schedule on failure
		fallbackID, fallbackErr := r.cron.AddFunc(job.schedule, func() { _ = r.execute(job) })
		if fallbackErr != nil {
			return fmt.Errorf("critical: failed to restore schedule after update failure: %w (original: %w)", fallbackErr, err)
		}
		job.entryID = fallbackID
		return fmt.Errorf("failed to apply new schedule: %w", err)
	}
	job.entryID = id
	job.schedule = schedule
	return nil
}

// Unregister removes a job and its cron entry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[name]
	if !ok {
		return
	}
	r.cron.Remove(job.entryID)
	delete(r.jobs, name)

	r.logger.Debug("unregistered scheduled job", "name", name)
}
