// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/uow"
)

// StagedOp is one write recorded by Work.
type StagedOp struct {
	Table  string
	Action string // add, update, remove
	Item   any
}

func (o StagedOp) String() string {
	return fmt.Sprintf("%s %s", o.Action, o.Table)
}

// Work is an in-memory uow.UnitOfWork that records staged writes.
// Reads return nothing. Commit only marks it closed.
type Work struct {
	Ops       []StagedOp
	Heads     map[uuid.UUID]uuid.NullUUID
	Committed bool
	Discarded bool
}

// NewWork returns an empty recording unit of work.
func NewWork() *Work {
	return &Work{Heads: make(map[uuid.UUID]uuid.NullUUID)}
}

// Tables returns the table of every recorded op, in order.
func (w *Work) Tables() []string {
	out := make([]string, len(w.Ops))
	for i, op := range w.Ops {
		out[i] = op.String()
	}
	return out
}

// OpsOn returns the recorded ops of one table.
func (w *Work) OpsOn(table string) []StagedOp {
	var out []StagedOp
	for _, op := range w.Ops {
		if op.Table == table {
			out = append(out, op)
		}
	}
	return out
}

type recordingRepo[T any] struct {
	w     *Work
	table string
}

func repoOf[T any](w *Work, table string) uow.Repository[T] {
	return &recordingRepo[T]{w: w, table: table}
}

func (r *recordingRepo[T]) Get(context.Context, ...any) (T, error) {
	var zero T
	return zero, fmt.Errorf("%s: %w", r.table, uow.ErrNotFound)
}

func (r *recordingRepo[T]) List(context.Context, ...uow.Cond) ([]T, error) { return nil, nil }

func (r *recordingRepo[T]) Add(item T)    { r.record("add", item) }
func (r *recordingRepo[T]) Update(item T) { r.record("update", item) }
func (r *recordingRepo[T]) Remove(item T) { r.record("remove", item) }

func (r *recordingRepo[T]) record(action string, item T) {
	r.w.Ops = append(r.w.Ops, StagedOp{Table: r.table, Action: action, Item: item})
}

// Roots implements uow.UnitOfWork.
func (w *Work) Roots() uow.Repository[model.Root] { return repoOf[model.Root](w, "roots") }

// Versionings implements uow.UnitOfWork.
func (w *Work) Versionings() uow.Repository[model.Versioning] {
	return repoOf[model.Versioning](w, "versionings")
}

// LanguageAvailabilities implements uow.UnitOfWork.
func (w *Work) LanguageAvailabilities() uow.Repository[model.LanguageAvailability] {
	return repoOf[model.LanguageAvailability](w, "language_availabilities")
}

// Services implements uow.UnitOfWork.
func (w *Work) Services() uow.Repository[model.Service] { return repoOf[model.Service](w, "services") }

// Organizations implements uow.UnitOfWork.
func (w *Work) Organizations() uow.Repository[model.Organization] {
	return repoOf[model.Organization](w, "organizations")
}

// Channels implements uow.UnitOfWork.
func (w *Work) Channels() uow.Repository[model.Channel] { return repoOf[model.Channel](w, "channels") }

// GeneralDescriptions implements uow.UnitOfWork.
func (w *Work) GeneralDescriptions() uow.Repository[model.GeneralDescription] {
	return repoOf[model.GeneralDescription](w, "general_descriptions")
}

// Texts implements uow.UnitOfWork.
func (w *Work) Texts(kind model.EntityKind) uow.Repository[model.LocalizedText] {
	return repoOf[model.LocalizedText](w, string(kind)+"_texts")
}

// Phones implements uow.UnitOfWork.
func (w *Work) Phones(kind model.EntityKind) uow.Repository[model.Phone] {
	return repoOf[model.Phone](w, string(kind)+"_phones")
}

// ChannelHours implements uow.UnitOfWork.
func (w *Work) ChannelHours() uow.Repository[model.ServiceHour] {
	return repoOf[model.ServiceHour](w, "channel_hours")
}

// ExpectHead implements uow.UnitOfWork.
func (w *Work) ExpectHead(rootID uuid.UUID, expected uuid.NullUUID) { w.Heads[rootID] = expected }

// Staged implements uow.UnitOfWork.
func (w *Work) Staged() int { return len(w.Ops) }

// Commit implements uow.UnitOfWork.
func (w *Work) Commit(context.Context) error {
	if w.Committed || w.Discarded {
		return uow.ErrClosed
	}
	w.Committed = true
	return nil
}

// Discard implements uow.UnitOfWork.
func (w *Work) Discard() { w.Discarded = true }

var _ uow.UnitOfWork = (*Work)(nil)
