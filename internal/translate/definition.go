// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"errors"
	"fmt"

	"github.com/olegiv/servreg-go/internal/resolution"
	"github.com/olegiv/servreg-go/internal/uow"
)

// Run is the state of one execution of a Definition.
type Run struct {
	*Context
	deferred []func()
}

// Defer schedules fn to run after the target row has been staged.
// Child rows use it so they are inserted after their owner.
func (r *Run) Defer(fn func()) {
	r.deferred = append(r.deferred, fn)
}

// Step maps one region of a source value onto the target.
type Step[S, T any] func(r *Run, src S, dst *T) error

// Definition is the mapping from S to T. Build one per call.
type Definition[S, T any] struct {
	tc    *Context
	steps []Step[S, T]

	candidates func(r *Run, src S) ([]T, error)
	identity   func(src S) resolution.Identity[T]
	create     func(r *Run, src S) (T, error)
	persist    uow.Repository[T]
}

// Define starts a definition. Building it does no I/O.
func Define[S, T any](tc *Context) *Definition[S, T] {
	return &Definition[S, T]{tc: tc}
}

// Steps appends steps; they run in the order added.
func (d *Definition[S, T]) Steps(steps ...Step[S, T]) *Definition[S, T] {
	d.steps = append(d.steps, steps...)
	return d
}

// Identity declares how a write finds the row it updates: candidates loads
// the rows to resolve against and identity describes the match.
func (d *Definition[S, T]) Identity(candidates func(r *Run, src S) ([]T, error), identity func(src S) resolution.Identity[T]) *Definition[S, T] {
	d.candidates = candidates
	d.identity = identity
	return d
}

// Create sets the initial value of a row that resolution decided to create.
// Without it new rows start from the zero T.
func (d *Definition[S, T]) Create(fn func(r *Run, src S) (T, error)) *Definition[S, T] {
	d.create = fn
	return d
}

// Persist sets the repository GetFinal stages the target row on.
func (d *Definition[S, T]) Persist(repo uow.Repository[T]) *Definition[S, T] {
	d.persist = repo
	return d
}

// Translate applies the steps to a zero T. Deferred work is dropped, so
// only read definitions should be run this way.
func (d *Definition[S, T]) Translate(src S) (T, error) {
	var dst T
	r := &Run{Context: d.tc}
	if err := d.apply(r, src, &dst); err != nil {
		return dst, err
	}
	return dst, nil
}

// GetFinal resolves the target row, applies the steps and stages the row
// followed by any deferred child writes.
func (d *Definition[S, T]) GetFinal(src S) (T, error) {
	var zero T
	if d.persist == nil {
		return zero, errors.New("translate: write definition has no repository")
	}

	r := &Run{Context: d.tc}

	var candidates []T
	if d.candidates != nil {
		var err error
		if candidates, err = d.candidates(r, src); err != nil {
			return zero, fmt.Errorf("loading candidates: %w", err)
		}
	}

	var id resolution.Identity[T]
	if d.identity != nil {
		id = d.identity(src)
	}
	out, err := resolution.Resolve(candidates, id)
	if err != nil {
		return zero, err
	}

	var dst T
	if out.Action == resolution.Update {
		dst = out.Existing
	} else if d.create != nil {
		if dst, err = d.create(r, src); err != nil {
			return zero, err
		}
	}

	if err := d.apply(r, src, &dst); err != nil {
		return zero, err
	}

	if out.Action == resolution.Update {
		d.persist.Update(dst)
	} else {
		d.persist.Add(dst)
	}
	for _, fn := range r.deferred {
		fn()
	}
	return dst, nil
}

func (d *Definition[S, T]) apply(r *Run, src S, dst *T) error {
	for i, step := range d.steps {
		if err := step(r, src, dst); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// run executes d inside an outer run: writes go through GetFinal, reads
// through the step list.
func (d *Definition[S, T]) run(src S) (T, error) {
	if d.persist != nil {
		return d.GetFinal(src)
	}
	return d.Translate(src)
}
