// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/i18n"
	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/reconcile"
	"github.com/olegiv/servreg-go/internal/resolution"
	"github.com/olegiv/servreg-go/internal/uow"
)

// Simple copies a value, passing it through transforms in order.
func Simple[S, T, V any](get func(S) V, set func(*T, V), transforms ...func(V) V) Step[S, T] {
	return func(_ *Run, src S, dst *T) error {
		v := get(src)
		for _, tr := range transforms {
			v = tr(v)
		}
		set(dst, v)
		return nil
	}
}

// Convert copies a value through a conversion that may fail, e.g. a type
// code to its id.
func Convert[S, T, V, W any](get func(S) V, conv func(r *Run, v V) (W, error), set func(*T, W)) Step[S, T] {
	return func(r *Run, src S, dst *T) error {
		w, err := conv(r, get(src))
		if err != nil {
			return err
		}
		set(dst, w)
		return nil
	}
}

// Navigation maps a nested value through its own definition. get reports
// false when there is nothing to map. A nested write definition stages its
// row before the row of the outer definition.
func Navigation[S, T, NS, NT any](get func(S) (NS, bool), sub func(tc *Context) *Definition[NS, NT], set func(*T, NT)) Step[S, T] {
	return func(r *Run, src S, dst *T) error {
		ns, ok := get(src)
		if !ok {
			return nil
		}
		nt, err := sub(r.Context).run(ns)
		if err != nil {
			return fmt.Errorf("navigation: %w", err)
		}
		set(dst, nt)
		return nil
	}
}

// Partial maps a sub-region of the source onto a sub-region of the target
// with a shared list of steps. into must return a pointer into dst.
func Partial[S, T, PS, PT any](from func(S) PS, into func(*T) *PT, steps ...Step[PS, PT]) Step[S, T] {
	return func(r *Run, src S, dst *T) error {
		ps := from(src)
		pt := into(dst)
		for _, step := range steps {
			if err := step(r, ps, pt); err != nil {
				return err
			}
		}
		return nil
	}
}

// Text names one type of localized text rows.
type Text struct {
	Group string
	Code  string
}

// Localized collapses the text rows of one type to a single value in the
// request language, falling back through the global order to the missing
// value. Transforms apply to found values only.
func Localized[S, T any](rows func(S) []model.LocalizedText, text Text, set func(*T, i18n.Resolution[string]), transforms ...func(string) string) Step[S, T] {
	return func(r *Run, src S, dst *T) error {
		typeID, err := r.TypeID(text.Group, text.Code)
		if err != nil {
			return err
		}
		var candidates []i18n.Candidate[string]
		for _, row := range rows(src) {
			if row.TypeID == typeID {
				candidates = append(candidates, i18n.Candidate[string]{LanguageID: row.LanguageID, Value: row.Value})
			}
		}
		res := i18n.ResolveMeta(candidates, r.RequestLanguage, r.FallbackOrder(), r.Missing)
		if res.Found {
			for _, tr := range transforms {
				res.Value = tr(res.Value)
			}
		}
		set(dst, res)
		return nil
	}
}

// LocalizedValue is Localized for callers that need the value only.
func LocalizedValue[S, T any](rows func(S) []model.LocalizedText, text Text, set func(*T, string), transforms ...func(string) string) Step[S, T] {
	return Localized(rows, text, func(dst *T, res i18n.Resolution[string]) { set(dst, res.Value) }, transforms...)
}

// LocalizedSet keeps the rows of the single best language: the request
// language if any row has it, otherwise the first language of the fallback
// order that has rows. No rows yields an empty set.
func LocalizedSet[S, T, R any](rows func(S) []R, lang func(R) uuid.UUID, set func(*T, []R)) Step[S, T] {
	return func(r *Run, src S, dst *T) error {
		all := rows(src)
		candidates := make([]i18n.Candidate[uuid.UUID], len(all))
		for i, row := range all {
			candidates[i] = i18n.Candidate[uuid.UUID]{LanguageID: lang(row), Value: lang(row)}
		}
		best := i18n.ResolveMeta(candidates, r.RequestLanguage, r.FallbackOrder(), uuid.Nil)

		var out []R
		if best.Found {
			for _, row := range all {
				if lang(row) == best.Value {
					out = append(out, row)
				}
			}
		}
		set(dst, out)
		return nil
	}
}

// TextOwner is an entity that owns localized text rows.
type TextOwner interface {
	Header() *model.Versioned
	Kind() model.EntityKind
	TextRows() *[]model.LocalizedText
}

// LocalizedWrite stores one value as the text row of the active language.
// The row is found by owner, language and type; a miss creates it. A nil
// value leaves the text alone and an empty value removes the row.
func LocalizedWrite[S, T any, PT interface {
	*T
	TextOwner
}](get func(S) *string, text Text, transforms ...func(string) string) Step[S, T] {
	return func(r *Run, src S, dst *T) error {
		v := get(src)
		if v == nil {
			return nil
		}
		value := *v
		for _, tr := range transforms {
			value = tr(value)
		}

		typeID, err := r.TypeID(text.Group, text.Code)
		if err != nil {
			return err
		}

		owner := PT(dst)
		ownerID := owner.Header().ID
		rows := owner.TextRows()
		lang := r.ActiveLanguage

		out, err := resolution.Resolve(*rows, resolution.Identity[model.LocalizedText]{
			Predicate: resolution.All(
				resolution.Equal(func(t model.LocalizedText) uuid.UUID { return t.OwnerID }, ownerID),
				resolution.Equal(func(t model.LocalizedText) uuid.UUID { return t.LanguageID }, lang),
				resolution.Equal(func(t model.LocalizedText) uuid.UUID { return t.TypeID }, typeID),
			),
		})
		if err != nil {
			return fmt.Errorf("%s text: %w", text.Code, err)
		}

		repo := r.Work.Texts(owner.Kind())
		switch {
		case out.Action == resolution.Update && value == "":
			removed := out.Existing
			*rows = slices.Delete(slices.Clone(*rows), out.Index, out.Index+1)
			r.Defer(func() { repo.Remove(removed) })

		case out.Action == resolution.Update:
			if out.Existing.Value == value {
				return nil
			}
			row := out.Existing
			row.Value = value
			row.ModifiedAt = r.Now
			*rows = slices.Clone(*rows)
			(*rows)[out.Index] = row
			r.Defer(func() { repo.Update(row) })

		case value != "":
			row := model.LocalizedText{
				ID:         uuid.New(),
				OwnerID:    ownerID,
				LanguageID: lang,
				TypeID:     typeID,
				Value:      value,
				ModifiedAt: r.Now,
			}
			*rows = append(slices.Clone(*rows), row)
			r.Defer(func() { repo.Add(row) })
		}
		return nil
	}
}

// List filters and orders a Collection. Both fields are optional.
type List[E any] struct {
	Where func(E) bool
	Order func(a, b E) int
}

// Collection copies a list element by element, filtered and ordered by opts.
func Collection[S, T, E, F any](get func(S) []E, conv func(r *Run, e E) (F, error), set func(*T, []F), opts List[E]) Step[S, T] {
	return func(r *Run, src S, dst *T) error {
		items := get(src)
		if opts.Where != nil {
			items = slices.DeleteFunc(slices.Clone(items), func(e E) bool { return !opts.Where(e) })
		}
		if opts.Order != nil {
			items = slices.Clone(items)
			slices.SortStableFunc(items, opts.Order)
		}
		out := make([]F, 0, len(items))
		for i, e := range items {
			f, err := conv(r, e)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			out = append(out, f)
		}
		set(dst, out)
		return nil
	}
}

// Reconciler binds a child collection of T to its reconciliation.
type Reconciler[T, R, I any] struct {
	// Rows returns the collection on the target entity.
	Rows func(dst *T) *[]R
	// Spec builds the reconciliation for the target entity.
	Spec func(r *Run, dst *T) (reconcile.Spec[R, I], error)
	// Repo returns the repository the changes are staged on.
	Repo func(r *Run) uow.Repository[R]
}

// Reconciled makes the owned part of a child collection match the targets.
// A nil target list leaves the collection alone; an empty one clears the
// owned part (or keeps it, in WithKeep mode).
func Reconciled[S, T, R, I any](targets func(S) []I, rc Reconciler[T, R, I]) Step[S, T] {
	return func(r *Run, src S, dst *T) error {
		items := targets(src)
		if items == nil {
			return nil
		}
		spec, err := rc.Spec(r, dst)
		if err != nil {
			return err
		}
		rows := rc.Rows(dst)
		res, err := reconcile.Reconcile(*rows, items, spec)
		if err != nil {
			return err
		}
		*rows = res.Items
		if res.Changed() {
			repo := rc.Repo(r)
			r.Defer(func() { reconcile.Stage(repo, res) })
		}
		return nil
	}
}

// Same is the identity conversion for Collection.
func Same[E any](_ *Run, e E) (E, error) {
	return e, nil
}
