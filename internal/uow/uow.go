// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uow defines the unit-of-work boundary the registry engine stages its
// writes into. The engine depends on these interfaces only; package store
// provides the SQL implementation.
package uow

import (
	"context"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
)

// Op is a comparison operator of a Cond.
type Op string

// Supported operators.
const (
	OpEq  Op = "="
	OpNe  Op = "<>"
	OpLte Op = "<="
)

// Cond is a column condition used by Repository.List. Conditions are ANDed.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

// Eq matches rows whose column equals value.
func Eq(column string, value any) Cond {
	return Cond{Column: column, Op: OpEq, Value: value}
}

// Ne matches rows whose column differs from value.
func Ne(column string, value any) Cond {
	return Cond{Column: column, Op: OpNe, Value: value}
}

// Lte matches rows whose column is less than or equal to value.
func Lte(column string, value any) Cond {
	return Cond{Column: column, Op: OpLte, Value: value}
}

// Repository gives typed access to one table inside a unit of work.
// Reads go to the store immediately; writes are staged until Commit.
type Repository[T any] interface {
	// Get loads one row by its key columns, in key order.
	// Returns ErrNotFound if no row matches.
	Get(ctx context.Context, key ...any) (T, error)

	// List loads all rows matching conds.
	List(ctx context.Context, conds ...Cond) ([]T, error)

	// Add stages an insert.
	Add(item T)

	// Update stages an update of the row with the item's key.
	Update(item T)

	// Remove stages a hard delete of the row with the item's key.
	Remove(item T)
}

// UnitOfWork is the transactional write boundary of one logical operation.
// Implementations are not safe for concurrent use; open one per request.
type UnitOfWork interface {
	Roots() Repository[model.Root]
	Versionings() Repository[model.Versioning]
	LanguageAvailabilities() Repository[model.LanguageAvailability]

	Services() Repository[model.Service]
	Organizations() Repository[model.Organization]
	Channels() Repository[model.Channel]
	GeneralDescriptions() Repository[model.GeneralDescription]

	// Texts returns the localized text table of an entity kind.
	Texts(kind model.EntityKind) Repository[model.LocalizedText]
	// Phones returns the phone table of an entity kind that has phones.
	Phones(kind model.EntityKind) Repository[model.Phone]
	ChannelHours() Repository[model.ServiceHour]

	// ExpectHead registers an optimistic check: at commit time the newest
	// versioning of rootID must be expected (invalid = no version yet).
	ExpectHead(rootID uuid.UUID, expected uuid.NullUUID)

	// Staged returns the number of staged write operations.
	Staged() int

	// Commit flushes all staged operations atomically and closes the unit of work.
	Commit(ctx context.Context) error

	// Discard drops all staged operations and closes the unit of work.
	Discard()
}
