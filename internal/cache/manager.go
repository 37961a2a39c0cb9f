// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/olegiv/servreg-go/internal/model"
)

// Manager owns the cache backend and the reference snapshots.
type Manager struct {
	Backend   Cacher
	Languages *LanguageCache
	Types     *TypeCache

	logger *slog.Logger
}

// NewManager loads the reference tables concurrently and returns a manager
// over backend.
func NewManager(ctx context.Context, backend Cacher, loader Loader, fallbackCodes []string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		languages []model.Language
		types     []model.TypeCode
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		languages, err = loader.Languages(gctx)
		if err != nil {
			return fmt.Errorf("loading languages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		types, err = loader.Types(gctx)
		if err != nil {
			return fmt.Errorf("loading type codes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	langs, err := NewLanguageCache(languages, fallbackCodes)
	if err != nil {
		return nil, err
	}

	logger.Info("reference data cached", "languages", len(languages), "types", len(types))
	return &Manager{
		Backend:   backend,
		Languages: langs,
		Types:     NewTypeCache(types),
		logger:    logger,
	}, nil
}

// KindPrefix returns the key prefix of all cached views of one kind.
func KindPrefix(kind model.EntityKind) string {
	return "view:" + string(kind) + ":"
}

// ViewPrefix returns the key prefix of all cached views of one entity.
func ViewPrefix(kind model.EntityKind, rootID uuid.UUID) string {
	return KindPrefix(kind) + rootID.String() + ":"
}

// ViewKey returns the key of one cached view of an entity.
func ViewKey(kind model.EntityKind, rootID uuid.UUID, mode, lang string) string {
	return ViewPrefix(kind, rootID) + mode + ":" + lang
}

// InvalidateEntity drops all cached views of one entity. Failures are logged
// and swallowed: the write that triggered them has already committed.
func (m *Manager) InvalidateEntity(ctx context.Context, kind model.EntityKind, rootID uuid.UUID) {
	if err := m.Backend.DeleteByPrefix(ctx, ViewPrefix(kind, rootID)); err != nil {
		m.logger.Warn("cache invalidation failed",
			"kind", kind, "root", rootID, "error", err, "category", model.EventCategoryCache)
	}
}

// InvalidateKind drops the cached views of every entity of one kind. It is
// used when an entity embedded in those views changes.
func (m *Manager) InvalidateKind(ctx context.Context, kind model.EntityKind) {
	if err := m.Backend.DeleteByPrefix(ctx, KindPrefix(kind)); err != nil {
		m.logger.Warn("cache invalidation failed",
			"kind", kind, "error", err, "category", model.EventCategoryCache)
	}
}

// Stats returns backend statistics when the backend provides them.
func (m *Manager) Stats() (Stats, bool) {
	sp, ok := m.Backend.(StatsProvider)
	if !ok {
		return Stats{}, false
	}
	return sp.Stats(), true
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.Backend.Close()
}
