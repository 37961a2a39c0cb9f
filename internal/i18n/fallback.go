// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package i18n

import "github.com/google/uuid"

// Candidate is one per-language value.
type Candidate[T any] struct {
	LanguageID uuid.UUID
	Value      T
}

// Resolution is the outcome of ResolveMeta.
type Resolution[T any] struct {
	Value T
	// LanguageID is the language the value came from; uuid.Nil for the default.
	LanguageID uuid.UUID
	// Found is false when the default was returned.
	Found bool
	// Fallback is true when the value is not in the requested language.
	Fallback bool
}

// Resolve picks one value from per-language candidates: the requested
// language if present, otherwise the first language of order that has a
// candidate, otherwise def. Among several candidates of one language the
// first wins. Missing values are not errors.
func Resolve[T any](candidates []Candidate[T], requested uuid.UUID, order []uuid.UUID, def T) T {
	return ResolveMeta(candidates, requested, order, def).Value
}

// ResolveMeta is Resolve that also reports where the value came from.
func ResolveMeta[T any](candidates []Candidate[T], requested uuid.UUID, order []uuid.UUID, def T) Resolution[T] {
	if c, ok := first(candidates, requested); ok {
		return Resolution[T]{Value: c.Value, LanguageID: requested, Found: true}
	}
	for _, lang := range order {
		if lang == requested {
			continue
		}
		if c, ok := first(candidates, lang); ok {
			return Resolution[T]{Value: c.Value, LanguageID: lang, Found: true, Fallback: true}
		}
	}
	return Resolution[T]{Value: def, Fallback: true}
}

func first[T any](candidates []Candidate[T], lang uuid.UUID) (Candidate[T], bool) {
	for _, c := range candidates {
		if c.LanguageID == lang {
			return c, true
		}
	}
	return Candidate[T]{}, false
}
