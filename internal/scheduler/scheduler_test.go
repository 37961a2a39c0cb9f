// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/servreg-go/internal/model"
)

type fakePublisher struct {
	n     int
	err   error
	calls int
}

func (p *fakePublisher) PublishDue(context.Context) (int, error) {
	p.calls++
	return p.n, p.err
}

type loggedEvent struct {
	category string
	message  string
	metadata map[string]any
}

type fakeEvents struct {
	logged    []loggedEvent
	olderThan time.Duration
	deleted   int64
}

func (e *fakeEvents) LogInfo(_ context.Context, category, message string, metadata map[string]any) error {
	e.logged = append(e.logged, loggedEvent{category, message, metadata})
	return nil
}

func (e *fakeEvents) DeleteOldEvents(_ context.Context, olderThan time.Duration) (int64, error) {
	e.olderThan = olderThan
	return e.deleted, nil
}

func testConfig() Config {
	return Config{
		PublishSchedule: "@every 1h",
		PruneSchedule:   "@every 24h",
		EventRetention:  30 * 24 * time.Hour,
	}
}

func TestNew(t *testing.T) {
	s := New(&fakePublisher{}, &fakeEvents{}, testConfig(), testLogger())
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cron == nil {
		t.Error("New() scheduler has nil cron")
	}
	if s.Registry() == nil {
		t.Error("New() scheduler has nil registry")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(&fakePublisher{}, &fakeEvents{}, testConfig(), testLogger())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	jobs := s.Registry().List()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name != JobPruneEvents || jobs[1].Name != JobPublishDue {
		t.Errorf("jobs = %q, %q", jobs[0].Name, jobs[1].Name)
	}
	if jobs[1].NextRun.IsZero() {
		t.Error("publish job has no next run")
	}
}

func TestScheduler_NoRetentionSkipsPrune(t *testing.T) {
	cfg := testConfig()
	cfg.EventRetention = 0
	s := New(&fakePublisher{}, &fakeEvents{}, cfg, testLogger())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	jobs := s.Registry().List()
	if len(jobs) != 1 || jobs[0].Name != JobPublishDue {
		t.Errorf("jobs = %+v, want only %s", jobs, JobPublishDue)
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.PublishSchedule = "every minute"
	s := New(&fakePublisher{}, &fakeEvents{}, cfg, testLogger())

	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("Start() should fail on an invalid schedule")
	}
}

func TestScheduler_PublishDueJob(t *testing.T) {
	pub := &fakePublisher{n: 3}
	events := &fakeEvents{}
	s := New(pub, events, testConfig(), testLogger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if err := s.Registry().TriggerNow(JobPublishDue); err != nil {
		t.Fatalf("TriggerNow: %v", err)
	}
	if pub.calls != 1 {
		t.Errorf("PublishDue calls = %d, want 1", pub.calls)
	}
	if len(events.logged) != 1 {
		t.Fatalf("logged %d events, want 1", len(events.logged))
	}
	if events.logged[0].category != model.EventCategoryPublishing {
		t.Errorf("category = %q, want %q", events.logged[0].category, model.EventCategoryPublishing)
	}
	if events.logged[0].metadata["versions"] != 3 {
		t.Errorf("metadata = %v", events.logged[0].metadata)
	}
}

func TestScheduler_PublishDueNothingDue(t *testing.T) {
	events := &fakeEvents{}
	s := New(&fakePublisher{}, events, testConfig(), testLogger())

	if err := s.publishDue(); err != nil {
		t.Fatalf("publishDue: %v", err)
	}
	if len(events.logged) != 0 {
		t.Errorf("logged %d events, want 0", len(events.logged))
	}
}

func TestScheduler_PublishDuePartialFailure(t *testing.T) {
	fail := errors.New("one version failed")
	events := &fakeEvents{}
	s := New(&fakePublisher{n: 1, err: fail}, events, testConfig(), testLogger())

	if err := s.publishDue(); !errors.Is(err, fail) {
		t.Errorf("publishDue error = %v, want %v", err, fail)
	}
	if len(events.logged) != 1 {
		t.Errorf("successful versions should still be logged, got %d events", len(events.logged))
	}
}

func TestScheduler_PruneEvents(t *testing.T) {
	events := &fakeEvents{deleted: 7}
	cfg := testConfig()
	s := New(&fakePublisher{}, events, cfg, testLogger())

	if err := s.pruneEvents(); err != nil {
		t.Fatalf("pruneEvents: %v", err)
	}
	if events.olderThan != cfg.EventRetention {
		t.Errorf("olderThan = %v, want %v", events.olderThan, cfg.EventRetention)
	}
}
