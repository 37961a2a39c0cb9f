// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/publishing"
	"github.com/olegiv/servreg-go/internal/translate"
	"github.com/olegiv/servreg-go/internal/uow"
	"github.com/olegiv/servreg-go/internal/versioning"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

func versionOf(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}

// Save writes the active language of an entity. A new root gets its first
// version. An open head version is edited in place; a head with a published,
// archived or deleted language is copied into a new version first.
func (r *Registry[E, PE, V, I]) Save(ctx context.Context, in I, opts SaveOptions) (viewmodel.Saved, error) {
	hdr := r.header(in)
	code := opts.Language
	if code == "" {
		code = hdr.Language
	}
	active, err := r.language(code)
	if err != nil {
		return viewmodel.Saved{}, err
	}
	now := r.deps.now()

	work := r.deps.Open()
	defer work.Discard()

	plan, err := versioning.Prepare(ctx, work, r.kind.Kind, hdr.ID, now)
	if err != nil {
		return viewmodel.Saved{}, err
	}

	var (
		target   translate.Target[E]
		label    string
		inPlace  bool
		headRows []model.LanguageAvailability
	)
	if plan.Head == nil {
		draft, err := versioning.CreateNextVersion(ctx, work, plan.Root.ID, nil, opts.Bump, now)
		if err != nil {
			return viewmodel.Saved{}, err
		}
		target.Header = draft.Header
		label = draft.Versioning.Label()
	} else {
		head, err := r.kind.byVersioning(ctx, work, plan.Head.ID)
		if err != nil {
			return viewmodel.Saved{}, err
		}
		ph := PE(&head)
		if err := r.checkBasis(ctx, work, hdr.VersionID, ph.Header(), plan); err != nil {
			return viewmodel.Saved{}, err
		}
		if headRows, err = publishing.LoadRows(ctx, work, ph.Header().ID); err != nil {
			return viewmodel.Saved{}, err
		}

		if plan.InPlace(headRows) {
			work.ExpectHead(plan.Root.ID, versionOf(plan.Head.ID))
			target.Current = &head
			label = plan.Head.Label()
			inPlace = true
		} else {
			draft, err := versioning.CreateNextVersion(ctx, work, plan.Root.ID, ph.Header(), opts.Bump, now)
			if err != nil {
				return viewmodel.Saved{}, err
			}
			clone := ph.CloneAs(draft.Header)
			r.kind.stage(work, clone)
			target.Current = &clone
			label = draft.Versioning.Label()
		}
	}

	saved, err := r.writer.Write(r.context(ctx, work, active, active, now), in, target)
	if err != nil {
		return viewmodel.Saved{}, err
	}
	ps := PE(&saved)

	var avail *publishing.Availability
	if inPlace {
		if avail, err = publishing.Load(ctx, work, ps); err != nil {
			return viewmodel.Saved{}, err
		}
	} else {
		avail = publishing.New(work, ps)
	}
	if err := avail.Touch(touched(ps.DeclaredLanguages(), active, inPlace, headRows), now); err != nil {
		return viewmodel.Saved{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return viewmodel.Saved{}, fmt.Errorf("saving %s %s: %w", r.kind.Kind, plan.Root.ID, err)
	}
	r.invalidate(ctx, plan.Root.ID)

	r.logger.Info("entity saved",
		"root", plan.Root.ID, "version", label, "in_place", inPlace, "created", plan.NewRoot,
		"category", model.EventCategoryVersioning)

	return viewmodel.Saved{
		ID:        plan.Root.ID,
		VersionID: ps.Header().ID,
		Version:   label,
		Created:   plan.NewRoot,
		InPlace:   inPlace,
	}, nil
}

// checkBasis rejects a save based on a version other than the head.
func (r *Registry[E, PE, V, I]) checkBasis(ctx context.Context, work uow.UnitOfWork, basis uuid.UUID, head *model.Versioned, plan versioning.Plan) error {
	if basis == uuid.Nil || basis == head.ID {
		return nil
	}
	conflict := &uow.VersionConflictError{RootID: plan.Root.ID, Actual: versionOf(plan.Head.ID)}
	stale, err := r.kind.table(work).Get(ctx, basis)
	switch {
	case err == nil:
		conflict.Expected = PE(&stale).Header().VersioningID
	case !errors.Is(err, ErrNotFound):
		return err
	}
	return conflict
}

// touched returns the languages that get a Draft row after a save. An edit
// in place touches the active language; a new version carries every
// language of the copied head except the removed ones.
func touched(declared []uuid.UUID, active uuid.UUID, inPlace bool, headRows []model.LanguageAvailability) []uuid.UUID {
	if inPlace {
		if slices.Contains(declared, active) {
			return []uuid.UUID{active}
		}
		return nil
	}
	out := make([]uuid.UUID, 0, len(declared))
	for _, lang := range declared {
		removed := slices.ContainsFunc(headRows, func(r model.LanguageAvailability) bool {
			return r.LanguageID == lang && r.Status == model.StatusRemoved
		})
		if !removed || lang == active {
			out = append(out, lang)
		}
	}
	return out
}

// others loads the language state of every version of a root except id.
func (r *Registry[E, PE, V, I]) others(ctx context.Context, work uow.UnitOfWork, rootID, id uuid.UUID) ([]*publishing.Availability, error) {
	all, err := r.kind.versions(ctx, work, rootID)
	if err != nil {
		return nil, err
	}
	out := make([]*publishing.Availability, 0, len(all))
	for _, e := range all {
		pe := PE(&e)
		if pe.Header().ID == id {
			continue
		}
		a, err := publishing.Load(ctx, work, pe)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Publish publishes languages of the head version, or schedules them when
// opts.At lies in the future. Publishing a language archives it on older
// versions; other languages keep their state.
func (r *Registry[E, PE, V, I]) Publish(ctx context.Context, rootID uuid.UUID, opts PublishOptions) (viewmodel.VersionInfo, error) {
	now := r.deps.now()
	work := r.deps.Open()
	defer work.Discard()

	head, ver, err := r.head(ctx, work, rootID)
	if err != nil {
		return viewmodel.VersionInfo{}, err
	}
	ph := PE(&head)

	langs, err := r.languages(opts.Languages)
	if err != nil {
		return viewmodel.VersionInfo{}, err
	}
	avail, err := publishing.Load(ctx, work, ph)
	if err != nil {
		return viewmodel.VersionInfo{}, err
	}
	if len(langs) == 0 {
		for _, lang := range ph.DeclaredLanguages() {
			if avail.Status(lang) != model.StatusRemoved {
				langs = append(langs, lang)
			}
		}
	}
	if len(langs) == 0 {
		return viewmodel.VersionInfo{}, &translate.ValidationError{Field: "languages", Reason: "nothing to publish"}
	}
	work.ExpectHead(rootID, versionOf(ver.ID))

	scheduled := opts.At != nil && opts.At.After(now)
	if scheduled {
		if err := avail.Touch(langs, now); err != nil {
			return viewmodel.VersionInfo{}, err
		}
		for _, lang := range langs {
			if err := avail.Schedule(lang, opts.At, now); err != nil {
				return viewmodel.VersionInfo{}, err
			}
		}
	} else {
		previous, err := r.others(ctx, work, rootID, ph.Header().ID)
		if err != nil {
			return viewmodel.VersionInfo{}, err
		}
		if err := avail.Publish(langs, previous, now); err != nil {
			return viewmodel.VersionInfo{}, err
		}
	}

	if err := work.Commit(ctx); err != nil {
		return viewmodel.VersionInfo{}, fmt.Errorf("publishing %s %s: %w", r.kind.Kind, rootID, err)
	}
	r.invalidate(ctx, rootID)

	r.logger.Info("entity published",
		"root", rootID, "version", ver.Label(), "languages", r.deps.Languages.Codes(langs),
		"scheduled", scheduled, "category", model.EventCategoryPublishing)

	return r.info(ver, *ph.Header(), avail.Rows()), nil
}

// publishScheduled publishes the due languages of one version. A version
// that is no longer the head has its schedule dropped instead.
func (r *Registry[E, PE, V, I]) publishScheduled(ctx context.Context, versionedID uuid.UUID, langs []uuid.UUID, now time.Time) error {
	work := r.deps.Open()
	defer work.Discard()

	e, err := r.kind.byID(ctx, work, versionedID)
	if err != nil {
		return err
	}
	pe := PE(&e)
	h := pe.Header()

	avail, err := publishing.Load(ctx, work, pe)
	if err != nil {
		return err
	}
	head, ok, err := versioning.Head(ctx, work, h.UnificRootID)
	if err != nil {
		return err
	}

	if !ok || !h.VersioningID.Valid || head.ID != h.VersioningID.UUID {
		for _, lang := range langs {
			if err := avail.Schedule(lang, nil, now); err != nil {
				return err
			}
		}
		r.logger.Warn("scheduled publishing dropped, version superseded",
			"root", h.UnificRootID, "version_id", versionedID, "category", model.EventCategoryPublishing)
	} else {
		work.ExpectHead(h.UnificRootID, versionOf(head.ID))
		previous, err := r.others(ctx, work, h.UnificRootID, versionedID)
		if err != nil {
			return err
		}
		if err := avail.Publish(langs, previous, now); err != nil {
			return err
		}
		r.logger.Info("scheduled publishing done",
			"root", h.UnificRootID, "version", head.Label(), "languages", r.deps.Languages.Codes(langs),
			"category", model.EventCategoryPublishing)
	}

	if err := work.Commit(ctx); err != nil {
		return fmt.Errorf("publishing %s %s: %w", r.kind.Kind, h.UnificRootID, err)
	}
	r.invalidate(ctx, h.UnificRootID)
	return nil
}

// RemoveLanguage takes one language of an entity out of circulation: it is
// marked Removed on the head version and on every version publishing it.
// Its texts stay so that a later save can bring the language back.
func (r *Registry[E, PE, V, I]) RemoveLanguage(ctx context.Context, rootID uuid.UUID, code string) error {
	lang, err := r.language(code)
	if err != nil {
		return err
	}
	now := r.deps.now()
	work := r.deps.Open()
	defer work.Discard()

	head, ver, err := r.head(ctx, work, rootID)
	if err != nil {
		return err
	}
	ph := PE(&head)
	avail, err := publishing.Load(ctx, work, ph)
	if err != nil {
		return err
	}
	work.ExpectHead(rootID, versionOf(ver.ID))

	if err := avail.SetStatus(lang, model.StatusRemoved, now); err != nil {
		return err
	}
	previous, err := r.others(ctx, work, rootID, ph.Header().ID)
	if err != nil {
		return err
	}
	for _, p := range previous {
		if p.Status(lang) != model.StatusPublished {
			continue
		}
		if err := p.SetStatus(lang, model.StatusRemoved, now); err != nil {
			return err
		}
	}

	if err := work.Commit(ctx); err != nil {
		return fmt.Errorf("removing %s from %s %s: %w", code, r.kind.Kind, rootID, err)
	}
	r.invalidate(ctx, rootID)
	r.logger.Info("language removed", "root", rootID, "language", code, "category", model.EventCategoryPublishing)
	return nil
}

// Delete marks every language of every version of an entity Deleted. The
// rows and the history stay; a later save starts a new draft version.
func (r *Registry[E, PE, V, I]) Delete(ctx context.Context, rootID uuid.UUID) error {
	now := r.deps.now()
	work := r.deps.Open()
	defer work.Discard()

	_, ver, err := r.head(ctx, work, rootID)
	if err != nil {
		return err
	}
	work.ExpectHead(rootID, versionOf(ver.ID))

	all, err := r.others(ctx, work, rootID, uuid.Nil)
	if err != nil {
		return err
	}
	for _, a := range all {
		for _, row := range a.Rows() {
			if err := a.SetStatus(row.LanguageID, model.StatusDeleted, now); err != nil {
				return err
			}
		}
	}

	if err := work.Commit(ctx); err != nil {
		return fmt.Errorf("deleting %s %s: %w", r.kind.Kind, rootID, err)
	}
	r.invalidate(ctx, rootID)
	r.logger.Info("entity deleted", "root", rootID, "category", model.EventCategoryPublishing)
	return nil
}
