// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/robfig/cron/v3"
)

// testLogger creates a test logger that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	c := cron.New()
	t.Cleanup(func() { c.Stop() })
	return NewRegistry(c, testLogger())
}

func TestRegister(t *testing.T) {
	registry := testRegistry(t)

	if err := registry.Register("test-job", "Test job description", "@every 1h", func() error { return nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	jobs := registry.List()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	job := jobs[0]
	if job.Name != "test-job" {
		t.Errorf("job.Name = %q, want %q", job.Name, "test-job")
	}
	if job.Description != "Test job description" {
		t.Errorf("job.Description = %q, want %q", job.Description, "Test job description")
	}
	if job.Schedule != "@every 1h" || job.DefaultSchedule != "@every 1h" {
		t.Errorf("job schedules = %q/%q, want @every 1h", job.Schedule, job.DefaultSchedule)
	}
	if job.IsOverridden {
		t.Error("job.IsOverridden should be false")
	}
}

func TestRegisterErrors(t *testing.T) {
	registry := testRegistry(t)

	if err := registry.Register("bad", "", "not a cron", func() error { return nil }); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	if err := registry.Register("job", "", "* * * * *", func() error { return nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := registry.Register("job", "", "* * * * *", func() error { return nil }); err == nil {
		t.Error("expected error for duplicate job")
	}
	if len(registry.List()) != 1 {
		t.Errorf("expected 1 job, got %d", len(registry.List()))
	}
}

func TestListSorted(t *testing.T) {
	registry := testRegistry(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(name, "", "@every 1h", func() error { return nil }); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}

	jobs := registry.List()
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if jobs[i].Name != name {
			t.Errorf("jobs[%d].Name = %q, want %q", i, jobs[i].Name, name)
		}
	}
}

func TestTriggerNow(t *testing.T) {
	registry := testRegistry(t)

	calls := 0
	fail := errors.New("boom")
	if err := registry.Register("job", "", "@every 1h", func() error {
		calls++
		if calls == 2 {
			return fail
		}
		return nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := registry.TriggerNow("job"); err != nil {
		t.Fatalf("TriggerNow: %v", err)
	}
	if err := registry.TriggerNow("job"); !errors.Is(err, fail) {
		t.Fatalf("TriggerNow error = %v, want %v", err, fail)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if got := registry.List()[0].LastError; got != "boom" {
		t.Errorf("LastError = %q, want %q", got, "boom")
	}
}

func TestTriggerNowNotFound(t *testing.T) {
	registry := testRegistry(t)

	if err := registry.TriggerNow("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("TriggerNow error = %v, want ErrJobNotFound", err)
	}
}

func TestTriggerNowWhileRunning(t *testing.T) {
	registry := testRegistry(t)

	started := make(chan struct{})
	release := make(chan struct{})
	if err := registry.Register("slow", "", "@every 1h", func() error {
		close(started)
		<-release
		return nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- registry.TriggerNow("slow") }()
	<-started

	if err := registry.TriggerNow("slow"); !errors.Is(err, ErrJobRunning) {
		t.Errorf("second TriggerNow error = %v, want ErrJobRunning", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Errorf("first TriggerNow: %v", err)
	}
}

func TestUpdateAndResetSchedule(t *testing.T) {
	registry := testRegistry(t)
	if err := registry.Register("job", "", "@every 1h", func() error { return nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := registry.UpdateSchedule("job", "*/5 * * * *"); err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	job := registry.List()[0]
	if job.Schedule != "*/5 * * * *" || !job.IsOverridden {
		t.Errorf("after update: schedule %q overridden %v", job.Schedule, job.IsOverridden)
	}

	if err := registry.UpdateSchedule("job", "invalid"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	if got := registry.List()[0].Schedule; got != "*/5 * * * *" {
		t.Errorf("schedule changed by failed update: %q", got)
	}

	if err := registry.ResetSchedule("job"); err != nil {
		t.Fatalf("ResetSchedule: %v", err)
	}
	job = registry.List()[0]
	if job.Schedule != "@every 1h" || job.IsOverridden {
		t.Errorf("after reset: schedule %q overridden %v", job.Schedule, job.IsOverridden)
	}
	if err := registry.ResetSchedule("job"); err != nil {
		t.Errorf("ResetSchedule at default: %v", err)
	}
}

func TestScheduleNotFound(t *testing.T) {
	registry := testRegistry(t)

	if err := registry.UpdateSchedule("missing", "@every 1h"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("UpdateSchedule error = %v, want ErrJobNotFound", err)
	}
	if err := registry.ResetSchedule("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("ResetSchedule error = %v, want ErrJobNotFound", err)
	}
}

func TestUnregister(t *testing.T) {
	registry := testRegistry(t)
	if err := registry.Register("job", "", "@every 1h", func() error { return nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}

	registry.Unregister("job")
	registry.Unregister("missing")

	if len(registry.List()) != 0 {
		t.Error("job still listed after Unregister")
	}
	if len(registry.cron.Entries()) != 0 {
		t.Error("cron entry left after Unregister")
	}
}
