// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package reconcile merges an incoming list into the rows persisted for it.
//
// Rows of one physical table are often shared by several logical lists
// (standard and exception hours, texts of several types, phones of several
// languages). Only the owned partition is reconciled; foreign rows pass
// through untouched.
package reconcile

import (
	"fmt"

	"github.com/olegiv/servreg-go/internal/resolution"
	"github.com/olegiv/servreg-go/internal/uow"
)

// Mode controls what happens to owned rows no target claims.
type Mode int

const (
	// WithRemove removes unclaimed owned rows.
	WithRemove Mode = iota
	// WithKeep keeps unclaimed owned rows (merge).
	WithKeep
)

// Spec describes one reconciliation.
type Spec[T, I any] struct {
	// Owned reports whether an existing row belongs to the list being reconciled.
	Owned func(T) bool
	// Identity tells how a target recognises its existing row.
	Identity func(I) resolution.Identity[T]
	// Apply produces the row for target. existing is nil for a new row.
	Apply func(target I, existing *T) (T, error)
	Mode  Mode
}

// Result is the outcome of Reconcile.
type Result[T any] struct {
	// Items is the full resulting list: foreign rows, kept rows, then
	// the resolved targets in target order.
	Items   []T
	Created []T
	Updated []T
	Removed []T
	Kept    []T
	Foreign []T
}

// OwnershipViolationError is returned when Apply produces a row outside
// the owned partition.
type OwnershipViolationError struct {
	Target int
}

func (e *OwnershipViolationError) Error() string {
	return fmt.Sprintf("reconciled row for target %d leaves the owned collection", e.Target)
}

// Reconcile resolves every target against the owned rows of existing.
func Reconcile[T, I any](existing []T, targets []I, spec Spec[T, I]) (Result[T], error) {
	var res Result[T]

	var owned []T
	for _, row := range existing {
		if spec.Owned(row) {
			owned = append(owned, row)
		} else {
			res.Foreign = append(res.Foreign, row)
		}
	}

	claimed := make([]bool, len(owned))
	resolved := make([]T, 0, len(targets))

	for i, target := range targets {
		out, err := resolution.Resolve(owned, spec.Identity(target))
		if err != nil {
			return Result[T]{}, fmt.Errorf("target %d: %w", i, err)
		}

		var row T
		if out.Action == resolution.Update {
			if claimed[out.Index] {
				return Result[T]{}, fmt.Errorf("target %d: %w", i,
					&resolution.AmbiguousResolutionError{Strategy: out.Strategy, Matches: 2})
			}
			claimed[out.Index] = true
			existingRow := out.Existing
			row, err = spec.Apply(target, &existingRow)
		} else {
			row, err = spec.Apply(target, nil)
		}
		if err != nil {
			return Result[T]{}, fmt.Errorf("target %d: %w", i, err)
		}
		if !spec.Owned(row) {
			return Result[T]{}, &OwnershipViolationError{Target: i}
		}

		if out.Action == resolution.Update {
			res.Updated = append(res.Updated, row)
		} else {
			res.Created = append(res.Created, row)
		}
		resolved = append(resolved, row)
	}

	for i, row := range owned {
		if claimed[i] {
			continue
		}
		if spec.Mode == WithKeep {
			res.Kept = append(res.Kept, row)
		} else {
			res.Removed = append(res.Removed, row)
		}
	}

	res.Items = make([]T, 0, len(res.Foreign)+len(res.Kept)+len(resolved))
	res.Items = append(res.Items, res.Foreign...)
	res.Items = append(res.Items, res.Kept...)
	res.Items = append(res.Items, resolved...)
	return res, nil
}

// Stage stages the result on repo: removals, then updates, then inserts.
func Stage[T any](repo uow.Repository[T], res Result[T]) {
	for _, row := range res.Removed {
		repo.Remove(row)
	}
	for _, row := range res.Updated {
		repo.Update(row)
	}
	for _, row := range res.Created {
		repo.Add(row)
	}
}

// Changed reports whether staging the result would write anything.
func (r Result[T]) Changed() bool {
	return len(r.Created) > 0 || len(r.Updated) > 0 || len(r.Removed) > 0
}
