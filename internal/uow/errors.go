// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict matches every VersionConflictError.
	ErrVersionConflict = errors.New("version conflict")

	// ErrClosed is returned when a committed or discarded unit of work is reused.
	ErrClosed = errors.New("unit of work closed")
)

// VersionConflictError reports that the version chain of a root moved on
// between reading the head and committing a new version. Retry by re-reading
// the head version and reapplying the change.
type VersionConflictError struct {
	RootID   uuid.UUID
	Expected uuid.NullUUID
	Actual   uuid.NullUUID
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on root %s: expected head %s, found %s",
		e.RootID, nullString(e.Expected), nullString(e.Actual))
}

// Is makes errors.Is(err, ErrVersionConflict) match.
func (e *VersionConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

func nullString(id uuid.NullUUID) string {
	if !id.Valid {
		return "<none>"
	}
	return id.UUID.String()
}
