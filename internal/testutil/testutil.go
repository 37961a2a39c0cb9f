// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the registry.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"

	"github.com/olegiv/servreg-go/internal/cache"
	"github.com/olegiv/servreg-go/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary test database with migrations applied and
// reference data seeded. Returns the database and a cleanup function that
// should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "servreg-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	if err := store.Seed(context.Background(), db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Seed: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// Lookups builds the language and type lookup tables from the seed data,
// with fallback order fi, sv, en.
func Lookups(t *testing.T) (*cache.LanguageCache, *cache.TypeCache) {
	t.Helper()

	db, cleanup := TestDB(t)
	defer cleanup()

	ctx := context.Background()
	langs, err := store.ListLanguages(ctx, db)
	if err != nil {
		t.Fatalf("ListLanguages: %v", err)
	}
	types, err := store.ListTypes(ctx, db)
	if err != nil {
		t.Fatalf("ListTypes: %v", err)
	}

	lc, err := cache.NewLanguageCache(langs, []string{"fi", "sv", "en"})
	if err != nil {
		t.Fatalf("NewLanguageCache: %v", err)
	}
	return lc, cache.NewTypeCache(types)
}
