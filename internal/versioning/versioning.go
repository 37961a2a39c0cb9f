// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package versioning keeps the root/version bookkeeping of versioned entities.
//
// Every revision gets an immutable Versioning row linked to the revision it
// supersedes. The chain is guarded twice: the unit of work checks the
// expected head at commit and the store rejects a second successor of one
// version.
package versioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/uow"
)

// Bump selects how the version number advances.
type Bump int

const (
	// Minor keeps the major number and increments the minor one.
	Minor Bump = iota
	// Major increments the major number and resets the minor one.
	Major
)

// Errors
var (
	ErrKindMismatch = errors.New("root belongs to another entity kind")
	ErrBrokenChain  = errors.New("version history is broken")
	ErrCycle        = errors.New("version history has a cycle")
)

// Draft is a new version: its staged Versioning row and the header the new
// versioned entity must be stored with.
type Draft struct {
	Versioning model.Versioning
	Header     model.Versioned
}

// EnsureRoot returns the root with rootID, staging a new root when it does
// not exist. uuid.Nil stages a root with a fresh id.
func EnsureRoot(ctx context.Context, work uow.UnitOfWork, kind model.EntityKind, rootID uuid.UUID, now time.Time) (model.Root, bool, error) {
	if rootID != uuid.Nil {
		root, err := work.Roots().Get(ctx, rootID)
		switch {
		case err == nil:
			if root.Kind != kind {
				return model.Root{}, false, fmt.Errorf("root %s is a %s: %w", rootID, root.Kind, ErrKindMismatch)
			}
			return root, false, nil
		case !errors.Is(err, uow.ErrNotFound):
			return model.Root{}, false, fmt.Errorf("loading root: %w", err)
		}
	} else {
		rootID = uuid.New()
	}

	root := model.Root{ID: rootID, Kind: kind, CreatedAt: now}
	work.Roots().Add(root)
	return root, true, nil
}

// CreateNextVersion stages the versioning row following basis (nil for the
// first version) and returns the header of the new versioned entity. The
// caller stages the entity itself. At commit the head of the root must still
// be the basis' versioning, otherwise the commit fails with a
// uow.VersionConflictError.
func CreateNextVersion(ctx context.Context, work uow.UnitOfWork, rootID uuid.UUID, basis *model.Versioned, bump Bump, now time.Time) (Draft, error) {
	v := model.Versioning{
		ID:           uuid.New(),
		UnificRootID: rootID,
		VersionMajor: 0,
		VersionMinor: 1,
		CreatedAt:    now,
	}

	if basis != nil && basis.VersioningID.Valid {
		prev, err := work.Versionings().Get(ctx, basis.VersioningID.UUID)
		if err != nil {
			return Draft{}, fmt.Errorf("loading basis version: %w", err)
		}
		if prev.UnificRootID != rootID {
			return Draft{}, fmt.Errorf("basis version %s belongs to root %s: %w", prev.ID, prev.UnificRootID, ErrBrokenChain)
		}
		v.VersionMajor, v.VersionMinor = next(prev, bump)
		v.PreviousVersionID = uuid.NullUUID{UUID: prev.ID, Valid: true}
	} else if bump == Major {
		v.VersionMajor, v.VersionMinor = 1, 0
	}

	work.Versionings().Add(v)
	work.ExpectHead(rootID, v.PreviousVersionID)

	return Draft{
		Versioning: v,
		Header: model.Versioned{
			ID:           uuid.New(),
			UnificRootID: rootID,
			VersioningID: uuid.NullUUID{UUID: v.ID, Valid: true},
			CreatedAt:    now,
			ModifiedAt:   now,
		},
	}, nil
}

func next(prev model.Versioning, bump Bump) (int, int) {
	if bump == Major {
		return prev.VersionMajor + 1, 0
	}
	return prev.VersionMajor, prev.VersionMinor + 1
}

// Head returns the newest version of a root: the one no other version
// supersedes. found is false for a root without versions.
func Head(ctx context.Context, work uow.UnitOfWork, rootID uuid.UUID) (model.Versioning, bool, error) {
	all, err := work.Versionings().List(ctx, uow.Eq("unific_root_id", rootID))
	if err != nil {
		return model.Versioning{}, false, fmt.Errorf("listing versions: %w", err)
	}
	head, ok := headOf(all)
	return head, ok, nil
}

func headOf(all []model.Versioning) (model.Versioning, bool) {
	superseded := make(map[uuid.UUID]bool, len(all))
	for _, v := range all {
		if v.PreviousVersionID.Valid {
			superseded[v.PreviousVersionID.UUID] = true
		}
	}

	var head model.Versioning
	found := false
	for _, v := range all {
		if superseded[v.ID] {
			continue
		}
		if !found || v.CreatedAt.After(head.CreatedAt) {
			head, found = v, true
		}
	}
	return head, found
}

// History returns the versions of a root from the head back to the first.
// A link to a missing version or a cycle is an error, so the walk always
// terminates.
func History(ctx context.Context, work uow.UnitOfWork, rootID uuid.UUID) ([]model.Versioning, error) {
	all, err := work.Versionings().List(ctx, uow.Eq("unific_root_id", rootID))
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	head, ok := headOf(all)
	if !ok {
		return nil, nil
	}
	return Walk(head, all)
}

// Walk follows PreviousVersionID links from head through all.
func Walk(head model.Versioning, all []model.Versioning) ([]model.Versioning, error) {
	byID := make(map[uuid.UUID]model.Versioning, len(all))
	for _, v := range all {
		byID[v.ID] = v
	}

	seen := make(map[uuid.UUID]bool, len(all))
	chain := []model.Versioning{}
	cur := head
	for {
		if seen[cur.ID] {
			return nil, fmt.Errorf("at %s: %w", cur.ID, ErrCycle)
		}
		seen[cur.ID] = true
		chain = append(chain, cur)

		if !cur.PreviousVersionID.Valid {
			return chain, nil
		}
		prev, ok := byID[cur.PreviousVersionID.UUID]
		if !ok {
			return nil, fmt.Errorf("%s links to missing %s: %w", cur.ID, cur.PreviousVersionID.UUID, ErrBrokenChain)
		}
		cur = prev
	}
}

// Plan is the starting point of a write to one root.
type Plan struct {
	Root    model.Root
	NewRoot bool
	// Head is the current head version; nil when the root has none.
	Head *model.Versioning
}

// Prepare ensures the root and loads its head.
func Prepare(ctx context.Context, work uow.UnitOfWork, kind model.EntityKind, rootID uuid.UUID, now time.Time) (Plan, error) {
	root, created, err := EnsureRoot(ctx, work, kind, rootID, now)
	if err != nil {
		return Plan{}, err
	}
	p := Plan{Root: root, NewRoot: created}
	if created {
		return p, nil
	}

	head, ok, err := Head(ctx, work, root.ID)
	if err != nil {
		return Plan{}, err
	}
	if ok {
		p.Head = &head
	}
	return p, nil
}

// InPlace reports whether the write may edit the head version directly:
// there is a head and none of its languages has been published, archived
// or deleted.
func (p Plan) InPlace(headRows []model.LanguageAvailability) bool {
	return p.Head != nil && !model.IsClosed(headRows)
}
