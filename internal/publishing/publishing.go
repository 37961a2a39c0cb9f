// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package publishing is the per-language publishing state machine of
// versioned entities.
//
// Every transition is scoped to one (versioned entity, language) pair;
// no operation changes the row of a language it was not asked about.
package publishing

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/uow"
)

// Subject is a versioned entity whose languages are published.
type Subject interface {
	Header() *model.Versioned
	Kind() model.EntityKind
	DeclaredLanguages() []uuid.UUID
}

// UnsupportedLanguageError is returned for a language outside the entity's
// declared language set.
type UnsupportedLanguageError struct {
	VersionedID uuid.UUID
	LanguageID  uuid.UUID
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("language %s is not declared by %s", e.LanguageID, e.VersionedID)
}

// InvalidTransitionError is returned for a transition the state machine
// does not allow. From is empty when the language has no row yet.
type InvalidTransitionError struct {
	LanguageID uuid.UUID
	From       model.PublishingStatus
	To         model.PublishingStatus
}

func (e *InvalidTransitionError) Error() string {
	from := e.From
	if from == "" {
		from = "none"
	}
	return fmt.Sprintf("cannot move language %s from %s to %s", e.LanguageID, from, e.To)
}

// CanTransition reports whether a language may move from one status to
// another. from is empty for a language without a row.
func CanTransition(from, to model.PublishingStatus) bool {
	if from == to {
		return true
	}
	switch to {
	case model.StatusRemoved, model.StatusDeleted:
		return from != ""
	case model.StatusDraft:
		return from == "" || from == model.StatusRemoved || from == model.StatusDeleted
	case model.StatusPublished:
		return from == model.StatusDraft
	case model.StatusOldPublished:
		return from == model.StatusPublished
	}
	return false
}

// Availability is the language state of one versioned entity inside a
// unit of work. Changes are applied in memory and staged on the unit of
// work, so later calls in the same unit of work see them.
type Availability struct {
	work        uow.UnitOfWork
	versionedID uuid.UUID
	kind        model.EntityKind
	declared    []uuid.UUID
	rows        []model.LanguageAvailability
}

// New returns the state of a subject without stored rows, e.g. a version
// created in the current unit of work.
func New(work uow.UnitOfWork, s Subject) *Availability {
	return &Availability{
		work:        work,
		versionedID: s.Header().ID,
		kind:        s.Kind(),
		declared:    s.DeclaredLanguages(),
	}
}

// Load returns the state of a subject with its stored rows.
func Load(ctx context.Context, work uow.UnitOfWork, s Subject) (*Availability, error) {
	a := New(work, s)
	rows, err := work.LanguageAvailabilities().List(ctx, uow.Eq("versioned_id", a.versionedID))
	if err != nil {
		return nil, fmt.Errorf("loading language availability: %w", err)
	}
	a.rows = rows
	return a, nil
}

// LoadRows returns the stored rows of one versioned entity.
func LoadRows(ctx context.Context, work uow.UnitOfWork, versionedID uuid.UUID) ([]model.LanguageAvailability, error) {
	rows, err := work.LanguageAvailabilities().List(ctx, uow.Eq("versioned_id", versionedID))
	if err != nil {
		return nil, fmt.Errorf("loading language availability: %w", err)
	}
	return rows, nil
}

// Rows returns a copy of the current rows.
func (a *Availability) Rows() []model.LanguageAvailability {
	return slices.Clone(a.rows)
}

// Row returns the row of one language.
func (a *Availability) Row(lang uuid.UUID) (model.LanguageAvailability, bool) {
	i := a.index(lang)
	if i < 0 {
		return model.LanguageAvailability{}, false
	}
	return a.rows[i], true
}

// Status returns the status of one language, empty when it has no row.
func (a *Availability) Status(lang uuid.UUID) model.PublishingStatus {
	row, _ := a.Row(lang)
	return row.Status
}

// IsPublished reports whether any language is published.
func (a *Availability) IsPublished() bool { return model.IsPublished(a.rows) }

// IsClosed reports whether the version may no longer be edited in place.
func (a *Availability) IsClosed() bool { return model.IsClosed(a.rows) }

// AvailableLanguages returns the languages that can be shown.
func (a *Availability) AvailableLanguages() []uuid.UUID { return model.AvailableLanguages(a.rows) }

// AggregateStatus returns the status of the whole version.
func (a *Availability) AggregateStatus() model.PublishingStatus { return model.AggregateStatus(a.rows) }

func (a *Availability) index(lang uuid.UUID) int {
	return slices.IndexFunc(a.rows, func(r model.LanguageAvailability) bool { return r.LanguageID == lang })
}

func (a *Availability) isDeclared(lang uuid.UUID) bool {
	return slices.Contains(a.declared, lang)
}

// SetStatus moves one language to status. Moving to Draft or Published
// requires the language to be declared; archiving, removing and deleting
// also accept a language that already has a row.
func (a *Availability) SetStatus(lang uuid.UUID, status model.PublishingStatus, when time.Time) error {
	i := a.index(lang)

	switch status {
	case model.StatusDraft, model.StatusPublished:
		if !a.isDeclared(lang) {
			return &UnsupportedLanguageError{VersionedID: a.versionedID, LanguageID: lang}
		}
	default:
		if i < 0 && !a.isDeclared(lang) {
			return &UnsupportedLanguageError{VersionedID: a.versionedID, LanguageID: lang}
		}
	}

	var from model.PublishingStatus
	if i >= 0 {
		from = a.rows[i].Status
	}
	if !CanTransition(from, status) {
		return &InvalidTransitionError{LanguageID: lang, From: from, To: status}
	}
	if from == status {
		return nil
	}

	if i < 0 {
		row := model.LanguageAvailability{
			VersionedID: a.versionedID,
			LanguageID:  lang,
			Kind:        a.kind,
			Status:      status,
			CreatedAt:   when,
			ModifiedAt:  when,
		}
		a.rows = append(a.rows, row)
		a.work.LanguageAvailabilities().Add(row)
		return nil
	}

	row := a.rows[i]
	row.Status = status
	row.ModifiedAt = when
	switch status {
	case model.StatusPublished:
		at := when
		row.PublishedAt = &at
		row.ScheduledPublishAt = nil
	case model.StatusDraft:
		row.PublishedAt = nil
	default:
		row.ScheduledPublishAt = nil
	}
	a.rows[i] = row
	a.work.LanguageAvailabilities().Update(row)
	return nil
}

// Touch makes sure every given language has a row, creating Draft rows and
// re-drafting removed or deleted ones. Other rows are left alone.
func (a *Availability) Touch(langs []uuid.UUID, when time.Time) error {
	for _, lang := range langs {
		switch a.Status(lang) {
		case "", model.StatusRemoved, model.StatusDeleted:
			if err := a.SetStatus(lang, model.StatusDraft, when); err != nil {
				return err
			}
		}
	}
	return nil
}

// Schedule sets or clears (at == nil) the scheduled publishing time of a
// Draft language.
func (a *Availability) Schedule(lang uuid.UUID, at *time.Time, when time.Time) error {
	if !a.isDeclared(lang) {
		return &UnsupportedLanguageError{VersionedID: a.versionedID, LanguageID: lang}
	}
	i := a.index(lang)
	if i < 0 || a.rows[i].Status != model.StatusDraft {
		return &InvalidTransitionError{LanguageID: lang, From: a.Status(lang), To: model.StatusPublished}
	}

	row := a.rows[i]
	if at != nil {
		utc := at.UTC()
		at = &utc
	}
	row.ScheduledPublishAt = at
	row.ModifiedAt = when
	a.rows[i] = row
	a.work.LanguageAvailabilities().Update(row)
	return nil
}

// Archive moves every published language of langs to OldPublished.
// Languages that are not published are skipped.
func (a *Availability) Archive(langs []uuid.UUID, when time.Time) error {
	for _, lang := range langs {
		if a.Status(lang) != model.StatusPublished {
			continue
		}
		if err := a.SetStatus(lang, model.StatusOldPublished, when); err != nil {
			return err
		}
	}
	return nil
}

// Publish publishes langs on this version after archiving them on the
// previous versions of the same root. Each language is handled on its own:
// publishing Finnish archives the old Finnish text only.
func (a *Availability) Publish(langs []uuid.UUID, previous []*Availability, when time.Time) error {
	for _, lang := range langs {
		if !a.isDeclared(lang) {
			return &UnsupportedLanguageError{VersionedID: a.versionedID, LanguageID: lang}
		}
	}
	for _, p := range previous {
		if p.versionedID == a.versionedID {
			continue
		}
		if err := p.Archive(langs, when); err != nil {
			return err
		}
	}
	if err := a.Touch(langs, when); err != nil {
		return err
	}
	for _, lang := range langs {
		if err := a.SetStatus(lang, model.StatusPublished, when); err != nil {
			return err
		}
	}
	return nil
}

// Due returns the Draft rows whose scheduled publishing time is not after now.
func Due(ctx context.Context, work uow.UnitOfWork, now time.Time) ([]model.LanguageAvailability, error) {
	rows, err := work.LanguageAvailabilities().List(ctx,
		uow.Eq("status", model.StatusDraft),
		uow.Lte("scheduled_publish_at", now.UTC()),
	)
	if err != nil {
		return nil, fmt.Errorf("listing scheduled languages: %w", err)
	}
	return rows, nil
}
