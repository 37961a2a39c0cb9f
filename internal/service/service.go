// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the registry operations of every entity kind:
// save, read, publish, history, language removal and deletion.
//
// Every write runs in its own unit of work. The versioning package decides
// between editing the head version in place and creating a new version, the
// translators map the input onto the chosen version and the publishing
// package keeps the per-language state.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/cache"
	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/publishing"
	"github.com/olegiv/servreg-go/internal/translate"
	"github.com/olegiv/servreg-go/internal/uow"
	"github.com/olegiv/servreg-go/internal/versioning"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

// ErrNotFound is returned for an unknown root or a root without the
// requested version.
var ErrNotFound = uow.ErrNotFound

// Deps are the dependencies shared by all registries.
type Deps struct {
	Open        func() uow.UnitOfWork
	Languages   *cache.LanguageCache
	Types       *cache.TypeCache
	Translators *translate.Registry
	// Views caches read models; nil disables caching.
	Views    *cache.Manager
	CacheTTL time.Duration
	Missing  string
	Logger   *slog.Logger
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// SaveOptions control a save.
type SaveOptions struct {
	// Language is the code of the language being edited. Empty means the
	// language of the input header, then the default language.
	Language string
	// Bump selects the version number change when a new version is created.
	Bump versioning.Bump
}

// GetOptions control a read.
type GetOptions struct {
	// Language is the requested language code; empty means the default.
	Language string
	// Published reads the newest published version instead of the head.
	Published bool
}

// PublishOptions control publishing.
type PublishOptions struct {
	// Languages to publish; empty means every language of the head version.
	Languages []string
	// At schedules publishing; nil or a time not after now publishes at once.
	At *time.Time
}

// entity is the constraint satisfied by pointers to versioned entities.
type entity[E any] interface {
	*E
	publishing.Subject
	TextRows() *[]model.LocalizedText
	CloneAs(h model.Versioned) E
}

// Registry implements the operations of one entity kind.
type Registry[E any, PE entity[E], V, I any] struct {
	deps   Deps
	kind   Kind[E]
	reader translate.Reader[E, V]
	writer translate.Writer[E, I]
	views  *cache.TypedCache[V]
	meta   func(*V) *viewmodel.Meta
	header func(I) viewmodel.InputHeader
	logger *slog.Logger
}

func newRegistry[E any, PE entity[E], V, I any](deps Deps, kind Kind[E], meta func(*V) *viewmodel.Meta, header func(I) viewmodel.InputHeader) (*Registry[E, PE, V, I], error) {
	reader, err := translate.LookupReader[E, V](deps.Translators)
	if err != nil {
		return nil, err
	}
	writer, err := translate.LookupWriter[E, I](deps.Translators)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry[E, PE, V, I]{
		deps:   deps,
		kind:   kind,
		reader: reader,
		writer: writer,
		meta:   meta,
		header: header,
		logger: logger.With("kind", kind.Kind),
	}
	if deps.Views != nil {
		r.views = cache.NewTypedCache[V](deps.Views.Backend, deps.CacheTTL)
	}
	return r, nil
}

// Kind returns the entity kind the registry serves.
func (r *Registry[E, PE, V, I]) Kind() model.EntityKind { return r.kind.Kind }

func (r *Registry[E, PE, V, I]) context(ctx context.Context, work uow.UnitOfWork, request, active uuid.UUID, now time.Time) *translate.Context {
	opts := []translate.Option{translate.WithLanguages(request, active), translate.WithClock(now)}
	if r.deps.Missing != "" {
		opts = append(opts, translate.WithMissing(r.deps.Missing))
	}
	return translate.NewContext(ctx, work, r.deps.Languages, r.deps.Types, opts...)
}

// language returns the id of a language code, the default language for "".
func (r *Registry[E, PE, V, I]) language(code string) (uuid.UUID, error) {
	if code == "" {
		return r.deps.Languages.Default().ID, nil
	}
	id, ok := r.deps.Languages.ID(code)
	if !ok {
		return uuid.Nil, &translate.UnknownCodeError{Group: "language", Code: code}
	}
	return id, nil
}

func (r *Registry[E, PE, V, I]) languages(codes []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(codes))
	for _, code := range codes {
		id, err := r.language(code)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// root loads a root and checks its kind. A root of another kind is reported
// as not found.
func (r *Registry[E, PE, V, I]) root(ctx context.Context, work uow.UnitOfWork, rootID uuid.UUID) (model.Root, error) {
	root, err := work.Roots().Get(ctx, rootID)
	if err != nil {
		return model.Root{}, err
	}
	if root.Kind != r.kind.Kind {
		return model.Root{}, fmt.Errorf("%s %s: %w", r.kind.Kind, rootID, ErrNotFound)
	}
	return root, nil
}

// head loads the head version of a root with its child rows.
func (r *Registry[E, PE, V, I]) head(ctx context.Context, work uow.UnitOfWork, rootID uuid.UUID) (E, model.Versioning, error) {
	var zero E
	if _, err := r.root(ctx, work, rootID); err != nil {
		return zero, model.Versioning{}, err
	}
	v, ok, err := versioning.Head(ctx, work, rootID)
	if err != nil {
		return zero, model.Versioning{}, err
	}
	if !ok {
		return zero, model.Versioning{}, fmt.Errorf("%s %s has no versions: %w", r.kind.Kind, rootID, ErrNotFound)
	}
	e, err := r.kind.byVersioning(ctx, work, v.ID)
	if err != nil {
		return zero, model.Versioning{}, err
	}
	return e, v, nil
}

func (r *Registry[E, PE, V, I]) invalidate(ctx context.Context, rootID uuid.UUID) {
	if r.deps.Views != nil {
		r.deps.Views.InvalidateEntity(ctx, r.kind.Kind, rootID)
		for _, kind := range r.kind.embeddedIn {
			r.deps.Views.InvalidateKind(ctx, kind)
		}
	}
}
