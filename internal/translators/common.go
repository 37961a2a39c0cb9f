// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translators holds the entity <-> view model translators of the
// registry, built on package translate.
package translators

import (
	"bytes"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/servreg-go/internal/i18n"
	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/resolution"
	"github.com/olegiv/servreg-go/internal/translate"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

var (
	// plainPolicy strips all markup from short texts such as names.
	plainPolicy = bluemonday.StrictPolicy()
	// richPolicy allows safe user-generated HTML in long descriptions.
	richPolicy = bluemonday.UGCPolicy()

	markdown = goldmark.New()
)

var (
	nameText          = translate.Text{Group: model.TypeGroupName, Code: model.NameTypeName}
	alternateNameText = translate.Text{Group: model.TypeGroupName, Code: model.NameTypeAlternateName}
	summaryText       = translate.Text{Group: model.TypeGroupDescription, Code: model.DescriptionTypeSummary}
	descriptionText   = translate.Text{Group: model.TypeGroupDescription, Code: model.DescriptionTypeDescription}
	backgroundText    = translate.Text{Group: model.TypeGroupDescription, Code: model.DescriptionTypeBackground}
)

// sanitizePlain returns s without markup or surrounding space.
func sanitizePlain(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(s)))
}

// sanitizeRich returns s with unsafe markup removed.
func sanitizeRich(s string) string {
	return strings.TrimSpace(richPolicy.Sanitize(s))
}

// renderMarkdown renders markdown to sanitized HTML. Raw HTML in the source
// is escaped by goldmark's default renderer.
func renderMarkdown(s string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(s), &buf); err != nil {
		return html.EscapeString(s)
	}
	return richPolicy.Sanitize(buf.String())
}

// entity is a versioned entity owning localized texts.
type entity[E any] interface {
	*E
	translate.TextOwner
}

// texts returns the text rows of an entity value.
func texts[E any, PE entity[E]](e E) []model.LocalizedText {
	return *PE(&e).TextRows()
}

// meta fills the header of a read model and flags a name read through fallback.
func meta[E, V any, PE entity[E]](m func(*V) *viewmodel.Meta) translate.Step[E, V] {
	name := translate.Localized(texts[E, PE], nameText, func(v *V, res i18n.Resolution[string]) {
		m(v).Fallback = res.Fallback
	})
	return func(r *translate.Run, src E, dst *V) error {
		h := PE(&src).Header()
		mv := m(dst)
		mv.ID = h.UnificRootID
		mv.VersionID = h.ID
		mv.ModifiedAt = h.ModifiedAt
		mv.Language = r.LanguageCode(r.RequestLanguage)
		return name(r, src, dst)
	}
}

// found sets a field only when a value exists in some language.
func found(set func(*viewmodel.DescriptionFields, string)) func(*viewmodel.DescriptionFields, i18n.Resolution[string]) {
	return func(d *viewmodel.DescriptionFields, res i18n.Resolution[string]) {
		if res.Found {
			set(d, res.Value)
		}
	}
}

func sameTexts(rows []model.LocalizedText) []model.LocalizedText { return rows }

// descriptionRead is the read side of the description block. The name
// falls back to the missing value; other fields stay empty when absent.
func descriptionRead() []translate.Step[[]model.LocalizedText, viewmodel.DescriptionFields] {
	return []translate.Step[[]model.LocalizedText, viewmodel.DescriptionFields]{
		translate.LocalizedValue(sameTexts, nameText, func(d *viewmodel.DescriptionFields, s string) { d.Name = s }),
		translate.Localized(sameTexts, alternateNameText, found(func(d *viewmodel.DescriptionFields, s string) { d.AlternateName = s })),
		translate.Localized(sameTexts, summaryText, found(func(d *viewmodel.DescriptionFields, s string) { d.Summary = s })),
		translate.Localized(sameTexts, descriptionText, found(func(d *viewmodel.DescriptionFields, s string) { d.Description = s })),
		translate.Localized(sameTexts, backgroundText, found(func(d *viewmodel.DescriptionFields, s string) { d.Background = s })),
		translate.Localized(sameTexts, backgroundText, found(func(d *viewmodel.DescriptionFields, s string) { d.BackgroundHTML = s }), renderMarkdown),
	}
}

// describe maps the description block of an entity onto a read model.
func describe[E, V any, PE entity[E]](into func(*V) *viewmodel.DescriptionFields) translate.Step[E, V] {
	return translate.Partial(texts[E, PE], into, descriptionRead()...)
}

// descriptionWrite is the write side of the description block.
func descriptionWrite[E any, PE entity[E]]() []translate.Step[viewmodel.DescriptionInput, E] {
	return []translate.Step[viewmodel.DescriptionInput, E]{
		translate.LocalizedWrite[viewmodel.DescriptionInput, E, PE](func(d viewmodel.DescriptionInput) *string { return d.Name }, nameText, sanitizePlain),
		translate.LocalizedWrite[viewmodel.DescriptionInput, E, PE](func(d viewmodel.DescriptionInput) *string { return d.AlternateName }, alternateNameText, sanitizePlain),
		translate.LocalizedWrite[viewmodel.DescriptionInput, E, PE](func(d viewmodel.DescriptionInput) *string { return d.Summary }, summaryText, sanitizePlain),
		translate.LocalizedWrite[viewmodel.DescriptionInput, E, PE](func(d viewmodel.DescriptionInput) *string { return d.Description }, descriptionText, sanitizeRich),
		translate.LocalizedWrite[viewmodel.DescriptionInput, E, PE](func(d viewmodel.DescriptionInput) *string { return d.Background }, backgroundText, strings.TrimSpace),
	}
}

// redescribe maps the description block of an input model onto an entity.
func redescribe[S, E any, PE entity[E]](from func(S) viewmodel.DescriptionInput) translate.Step[S, E] {
	return translate.Partial(from, func(e *E) *E { return e }, descriptionWrite[E, PE]()...)
}

// versionTarget points a write definition at the target version. The edited
// version is found by the version id the client sent, else by root id; a
// miss creates a new version with the target header.
func versionTarget[S, E any, PE entity[E]](d *translate.Definition[S, E], t translate.Target[E], head func(S) viewmodel.InputHeader, create func(model.Versioned) E) *translate.Definition[S, E] {
	return d.Identity(
		func(*translate.Run, S) ([]E, error) {
			if t.Current == nil {
				return nil, nil
			}
			return []E{*t.Current}, nil
		},
		func(src S) resolution.Identity[E] {
			h := head(src)
			return resolution.Identity[E]{
				AssignedKey: h.VersionID,
				KeyOf:       func(e E) uuid.UUID { return PE(&e).Header().ID },
				Predicate:   func(e E) bool { return PE(&e).Header().UnificRootID == h.ID },
			}
		},
	).Create(func(r *translate.Run, _ S) (E, error) {
		h := t.Header
		h.CreatedAt = r.Now
		return create(h), nil
	}).Steps(touch[S, E, PE]())
}

func touch[S, E any, PE entity[E]]() translate.Step[S, E] {
	return func(r *translate.Run, _ S, dst *E) error {
		PE(dst).Header().ModifiedAt = r.Now
		return nil
	}
}

// requireName fails unless the entity has a name in some language.
func requireName[S, E any, PE entity[E]]() translate.Step[S, E] {
	return func(r *translate.Run, _ S, dst *E) error {
		typeID, err := r.TypeID(nameText.Group, nameText.Code)
		if err != nil {
			return err
		}
		for _, t := range *PE(dst).TextRows() {
			if t.TypeID == typeID {
				return nil
			}
		}
		return &translate.ValidationError{Field: "name", Reason: "required in at least one language"}
	}
}

// typeCode sets a type id from its code. An empty code keeps the current
// type; the result must not be empty.
func typeCode[S, T any](group string, get func(S) string, field func(*T) *uuid.UUID) translate.Step[S, T] {
	return func(r *translate.Run, src S, dst *T) error {
		if code := get(src); code != "" {
			id, err := r.TypeID(group, code)
			if err != nil {
				return err
			}
			*field(dst) = id
		}
		if *field(dst) == uuid.Nil {
			return &translate.ValidationError{Field: "type", Reason: "required"}
		}
		return nil
	}
}

// reference sets a nullable root reference. nil keeps the current value and
// uuid.Nil clears it.
func reference[S, T any](get func(S) *uuid.UUID, field func(*T) *uuid.NullUUID) translate.Step[S, T] {
	return translate.Simple(get, func(dst *T, id *uuid.UUID) {
		switch {
		case id == nil:
		case *id == uuid.Nil:
			*field(dst) = uuid.NullUUID{}
		default:
			*field(dst) = uuid.NullUUID{UUID: *id, Valid: true}
		}
	})
}

// typeName returns a read step that sets the code of a type id.
func typeName[E, V any](get func(E) uuid.UUID, set func(*V, string)) translate.Step[E, V] {
	return translate.Convert(get, func(r *translate.Run, id uuid.UUID) (string, error) {
		return r.TypeCode(id), nil
	}, set)
}

func refPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}
