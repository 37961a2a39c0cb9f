// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package resolution decides whether an incoming value updates an existing
// row or creates a new one. It does no I/O: callers pass the candidate rows.
package resolution

import (
	"fmt"

	"github.com/google/uuid"
)

// Action is the outcome kind of a resolution.
type Action int

const (
	// Create means no existing row matched.
	Create Action = iota
	// Update means exactly one existing row matched.
	Update
)

func (a Action) String() string {
	if a == Update {
		return "update"
	}
	return "create"
}

// Strategy names the rule that produced an outcome.
type Strategy string

// Strategies, tried in this order.
const (
	ByAssignedKey       Strategy = "assigned_key"
	ByComposedPredicate Strategy = "predicate"
	None                Strategy = "none"
)

// Identity describes how to recognise the row an incoming value refers to.
type Identity[T any] struct {
	// AssignedKey is the key supplied by the caller, uuid.Nil when absent.
	AssignedKey uuid.UUID
	// KeyOf returns a row's key. Required when AssignedKey is set.
	KeyOf func(T) uuid.UUID
	// Predicate matches rows by content, e.g. same owner, language and type.
	// A nil predicate never matches.
	Predicate func(T) bool
}

// Outcome is the result of Resolve.
type Outcome[T any] struct {
	Action   Action
	Strategy Strategy
	// Existing and Index are set for Update.
	Existing T
	Index    int
}

// AmbiguousResolutionError is returned when more than one row matches.
type AmbiguousResolutionError struct {
	Strategy Strategy
	Matches  int
}

func (e *AmbiguousResolutionError) Error() string {
	return fmt.Sprintf("ambiguous resolution: %d rows match by %s", e.Matches, e.Strategy)
}

// Resolve returns exactly one outcome for an incoming value. The assigned key
// is tried first; when it is absent or matches no candidate the composed
// predicate is tried; a miss on both means Create.
func Resolve[T any](candidates []T, id Identity[T]) (Outcome[T], error) {
	if id.AssignedKey != uuid.Nil && id.KeyOf != nil {
		out, ok, err := match(candidates, ByAssignedKey, func(c T) bool { return id.KeyOf(c) == id.AssignedKey })
		if err != nil || ok {
			return out, err
		}
	}

	if id.Predicate != nil {
		out, ok, err := match(candidates, ByComposedPredicate, id.Predicate)
		if err != nil || ok {
			return out, err
		}
	}

	return Outcome[T]{Action: Create, Strategy: None, Index: -1}, nil
}

func match[T any](candidates []T, s Strategy, pred func(T) bool) (Outcome[T], bool, error) {
	found := -1
	matches := 0
	for i, c := range candidates {
		if pred(c) {
			matches++
			if found < 0 {
				found = i
			}
		}
	}

	switch {
	case matches == 0:
		return Outcome[T]{}, false, nil
	case matches > 1:
		return Outcome[T]{}, false, &AmbiguousResolutionError{Strategy: s, Matches: matches}
	}
	return Outcome[T]{Action: Update, Strategy: s, Existing: candidates[found], Index: found}, true, nil
}

// Equal returns a predicate matching rows whose field equals want.
func Equal[T any, V comparable](get func(T) V, want V) func(T) bool {
	return func(row T) bool { return get(row) == want }
}

// All returns a predicate matching rows that satisfy every predicate.
// With no predicates it matches nothing.
func All[T any](preds ...func(T) bool) func(T) bool {
	return func(row T) bool {
		if len(preds) == 0 {
			return false
		}
		for _, p := range preds {
			if !p(row) {
				return false
			}
		}
		return true
	}
}
