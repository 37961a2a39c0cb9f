// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/cache"
	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/publishing"
	"github.com/olegiv/servreg-go/internal/uow"
	"github.com/olegiv/servreg-go/internal/versioning"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// visible returns the languages a read may show: published ones for a
// published read, every available one otherwise.
func visible(rows []model.LanguageAvailability, published bool) func(uuid.UUID) bool {
	return func(lang uuid.UUID) bool {
		for _, row := range rows {
			if row.LanguageID != lang {
				continue
			}
			if published {
				return row.Status == model.StatusPublished
			}
			return row.Status.IsAvailable()
		}
		return false
	}
}

// pick loads the version a read shows, with its child rows and language
// rows. A latest read takes the head. A published read takes the newest
// version publishing lang, else the newest version publishing anything.
func pick[E any, PE entity[E]](ctx context.Context, work uow.UnitOfWork, kind Kind[E], rootID uuid.UUID, published bool, lang uuid.UUID) (E, model.Versioning, []model.LanguageAvailability, error) {
	var zero E
	history, err := versioning.History(ctx, work, rootID)
	if err != nil {
		return zero, model.Versioning{}, nil, err
	}
	if len(history) == 0 {
		return zero, model.Versioning{}, nil, fmt.Errorf("%s %s has no versions: %w", kind.Kind, rootID, ErrNotFound)
	}

	if !published {
		e, err := kind.byVersioning(ctx, work, history[0].ID)
		if err != nil {
			return zero, model.Versioning{}, nil, err
		}
		rows, err := publishing.LoadRows(ctx, work, PE(&e).Header().ID)
		if err != nil {
			return zero, model.Versioning{}, nil, err
		}
		return e, history[0], rows, nil
	}

	all, err := kind.versions(ctx, work, rootID)
	if err != nil {
		return zero, model.Versioning{}, nil, err
	}
	byVersioning := make(map[uuid.UUID]E, len(all))
	for _, e := range all {
		if h := PE(&e).Header(); h.VersioningID.Valid {
			byVersioning[h.VersioningID.UUID] = e
		}
	}

	type candidate struct {
		e    E
		v    model.Versioning
		rows []model.LanguageAvailability
	}
	var fallback *candidate
	for _, v := range history {
		e, ok := byVersioning[v.ID]
		if !ok {
			continue
		}
		rows, err := publishing.LoadRows(ctx, work, PE(&e).Header().ID)
		if err != nil {
			return zero, model.Versioning{}, nil, err
		}
		if !model.IsPublished(rows) {
			continue
		}
		c := candidate{e: e, v: v, rows: rows}
		if lang == uuid.Nil || slices.ContainsFunc(rows, func(r model.LanguageAvailability) bool {
			return r.LanguageID == lang && r.Status == model.StatusPublished
		}) {
			fallback = &c
			break
		}
		if fallback == nil {
			fallback = &c
		}
	}
	if fallback == nil {
		return zero, model.Versioning{}, nil, fmt.Errorf("%s %s has no published version: %w", kind.Kind, rootID, ErrNotFound)
	}
	if err := kind.children(ctx, work, &fallback.e); err != nil {
		return zero, model.Versioning{}, nil, err
	}
	return fallback.e, fallback.v, fallback.rows, nil
}

// Get returns the read model of an entity in the requested language. Text
// missing in that language falls back through the configured language order.
func (r *Registry[E, PE, V, I]) Get(ctx context.Context, rootID uuid.UUID, opts GetOptions) (V, error) {
	var zero V
	lang, err := r.language(opts.Language)
	if err != nil {
		return zero, err
	}
	if r.views == nil {
		return r.read(ctx, rootID, lang, opts.Published)
	}

	mode := "latest"
	if opts.Published {
		mode = "published"
	}
	code, _ := r.deps.Languages.Code(lang)
	v, err := r.views.GetOrLoad(ctx, cache.ViewKey(r.kind.Kind, rootID, mode, code), func(ctx context.Context) (*V, error) {
		v, err := r.read(ctx, rootID, lang, opts.Published)
		if err != nil {
			return nil, err
		}
		return &v, nil
	})
	if err != nil {
		return zero, err
	}
	return *v, nil
}

func (r *Registry[E, PE, V, I]) read(ctx context.Context, rootID, lang uuid.UUID, published bool) (V, error) {
	var zero V
	work := r.deps.Open()
	defer work.Discard()

	if _, err := r.root(ctx, work, rootID); err != nil {
		return zero, err
	}
	e, ver, rows, err := pick[E, PE](ctx, work, r.kind, rootID, published, lang)
	if err != nil {
		return zero, err
	}

	keep := visible(rows, published)
	var langs []uuid.UUID
	for _, row := range rows {
		if keep(row.LanguageID) {
			langs = append(langs, row.LanguageID)
		}
	}
	if len(langs) == 0 {
		return zero, fmt.Errorf("%s %s has no visible language: %w", r.kind.Kind, rootID, ErrNotFound)
	}
	r.kind.hide(&e, keep)

	if r.kind.related != nil {
		if err := r.kind.related(ctx, work, &e, published); err != nil {
			return zero, err
		}
	}

	v, err := r.reader.Read(r.context(ctx, work, lang, lang, r.deps.now()), e)
	if err != nil {
		return zero, fmt.Errorf("reading %s %s: %w", r.kind.Kind, rootID, err)
	}
	m := r.meta(&v)
	m.Version = ver.Label()
	m.Status = string(model.AggregateStatus(rows))
	m.Languages = r.deps.Languages.Codes(langs)
	return v, nil
}

// History returns every version of an entity, newest first.
func (r *Registry[E, PE, V, I]) History(ctx context.Context, rootID uuid.UUID) ([]viewmodel.VersionInfo, error) {
	work := r.deps.Open()
	defer work.Discard()

	if _, err := r.root(ctx, work, rootID); err != nil {
		return nil, err
	}
	history, err := versioning.History(ctx, work, rootID)
	if err != nil {
		return nil, err
	}
	all, err := r.kind.versions(ctx, work, rootID)
	if err != nil {
		return nil, err
	}
	byVersioning := make(map[uuid.UUID]E, len(all))
	for _, e := range all {
		if h := PE(&e).Header(); h.VersioningID.Valid {
			byVersioning[h.VersioningID.UUID] = e
		}
	}

	out := make([]viewmodel.VersionInfo, 0, len(history))
	for _, v := range history {
		e, ok := byVersioning[v.ID]
		if !ok {
			continue
		}
		h := PE(&e).Header()
		rows, err := publishing.LoadRows(ctx, work, h.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, r.info(v, *h, rows))
	}
	return out, nil
}

func (r *Registry[E, PE, V, I]) info(v model.Versioning, h model.Versioned, rows []model.LanguageAvailability) viewmodel.VersionInfo {
	langs := make(map[string]string, len(rows))
	for _, row := range rows {
		if code, ok := r.deps.Languages.Code(row.LanguageID); ok {
			langs[code] = string(row.Status)
		}
	}
	return viewmodel.VersionInfo{
		VersionID:    h.ID,
		VersioningID: v.ID,
		Version:      v.Label(),
		Status:       string(model.AggregateStatus(rows)),
		Languages:    langs,
		CreatedAt:    h.CreatedAt,
		ModifiedAt:   h.ModifiedAt,
	}
}
