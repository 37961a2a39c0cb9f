// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/uow"
)

// stagedOp is one write waiting for Commit.
type stagedOp struct {
	desc string
	// root is set for versioning inserts so that a chain violation can be
	// reported as a version conflict on that root.
	root uuid.NullUUID
	prev uuid.NullUUID
	run  func(ctx context.Context, tx DBTX) error
}

type headExpectation struct {
	root     uuid.UUID
	expected uuid.NullUUID
}

// Session is the SQL unit of work. Reads run against the database directly
// and do not see staged writes; writes run in one transaction on Commit.
type Session struct {
	db     *sql.DB
	logger *slog.Logger
	ops    []stagedOp
	heads  []headExpectation
	closed bool
}

// NewSession opens a unit of work over db.
func NewSession(db *sql.DB, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{db: db, logger: logger}
}

// Opener returns a factory of sessions over db.
func Opener(db *sql.DB, logger *slog.Logger) func() uow.UnitOfWork {
	return func() uow.UnitOfWork { return NewSession(db, logger) }
}

func (s *Session) Roots() uow.Repository[model.Root] { return repoFor(s, rootsTable) }

func (s *Session) Versionings() uow.Repository[model.Versioning] {
	return &versioningRepo{repo: repoFor(s, versioningsTable)}
}

func (s *Session) LanguageAvailabilities() uow.Repository[model.LanguageAvailability] {
	return repoFor(s, availabilitiesTable)
}

func (s *Session) Services() uow.Repository[model.Service] { return repoFor(s, servicesTable) }

func (s *Session) Organizations() uow.Repository[model.Organization] {
	return repoFor(s, organizationsTable)
}

func (s *Session) Channels() uow.Repository[model.Channel] { return repoFor(s, channelsTable) }

func (s *Session) GeneralDescriptions() uow.Repository[model.GeneralDescription] {
	return repoFor(s, generalDescriptionsTable)
}

// Texts returns the text table of kind. It panics on an unknown kind.
func (s *Session) Texts(kind model.EntityKind) uow.Repository[model.LocalizedText] {
	switch kind {
	case model.KindService:
		return repoFor(s, serviceTextsTable)
	case model.KindOrganization:
		return repoFor(s, organizationTextsTable)
	case model.KindChannel:
		return repoFor(s, channelTextsTable)
	case model.KindGeneralDescription:
		return repoFor(s, generalDescriptionTextsTable)
	}
	panic(fmt.Sprintf("store: no text table for kind %q", kind))
}

// Phones returns the phone table of kind. It panics on a kind without phones.
func (s *Session) Phones(kind model.EntityKind) uow.Repository[model.Phone] {
	switch kind {
	case model.KindOrganization:
		return repoFor(s, organizationPhonesTable)
	case model.KindChannel:
		return repoFor(s, channelPhonesTable)
	}
	panic(fmt.Sprintf("store: no phone table for kind %q", kind))
}

func (s *Session) ChannelHours() uow.Repository[model.ServiceHour] {
	return repoFor(s, channelHoursTable)
}

// ExpectHead implements uow.UnitOfWork.
func (s *Session) ExpectHead(rootID uuid.UUID, expected uuid.NullUUID) {
	for i, h := range s.heads {
		if h.root == rootID {
			s.heads[i].expected = expected
			return
		}
	}
	s.heads = append(s.heads, headExpectation{root: rootID, expected: expected})
}

// Staged implements uow.UnitOfWork.
func (s *Session) Staged() int { return len(s.ops) }

// Discard implements uow.UnitOfWork.
func (s *Session) Discard() {
	s.ops = nil
	s.heads = nil
	s.closed = true
}

// Commit implements uow.UnitOfWork. Head expectations are verified first, then
// staged operations run in staging order. Any failure rolls everything back.
func (s *Session) Commit(ctx context.Context) error {
	if s.closed {
		return uow.ErrClosed
	}
	s.closed = true

	if len(s.ops) == 0 && len(s.heads) == 0 {
		return nil
	}

	err := WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		for _, h := range s.heads {
			actual, err := headOf(ctx, tx, h.root)
			if err != nil {
				return err
			}
			if actual != h.expected {
				return &uow.VersionConflictError{RootID: h.root, Expected: h.expected, Actual: actual}
			}
		}

		for _, op := range s.ops {
			if err := op.run(ctx, tx); err != nil {
				unique := isUniqueViolation(err)
				switch {
				case unique && op.root.Valid:
					actual, _ := headOf(ctx, tx, op.root.UUID)
					return &uow.VersionConflictError{RootID: op.root.UUID, Expected: op.prev, Actual: actual}
				case (unique || errors.Is(err, uow.ErrNotFound)) && len(s.heads) > 0:
					// A concurrent writer created or removed the same child
					// row first.
					h := s.heads[0]
					return fmt.Errorf("%s: %w", op.desc,
						&uow.VersionConflictError{RootID: h.root, Expected: h.expected, Actual: h.expected})
				}
				return fmt.Errorf("%s: %w", op.desc, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("unit of work committed", "operations", len(s.ops))
	s.ops = nil
	s.heads = nil
	return nil
}

func (s *Session) stage(op stagedOp) {
	if s.closed {
		panic("store: staging on a closed unit of work")
	}
	s.ops = append(s.ops, op)
}

// headOf returns the versioning of rootID that no other versioning follows.
func headOf(ctx context.Context, db DBTX, rootID uuid.UUID) (uuid.NullUUID, error) {
	var head uuid.NullUUID
	err := db.QueryRowContext(ctx, `
		SELECT v.id FROM versionings v
		WHERE v.unific_root_id = ?
		  AND NOT EXISTS (SELECT 1 FROM versionings n WHERE n.previous_version_id = v.id)
		ORDER BY v.created_at DESC
		LIMIT 1`, rootID).Scan(&head)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.NullUUID{}, nil
	}
	if err != nil {
		return uuid.NullUUID{}, fmt.Errorf("reading head version of %s: %w", rootID, err)
	}
	return head, nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint
// failure. The cgo driver is matched by message since its error type only
// exists in cgo builds.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// repo is the generic Repository over one table.
type repo[T any] struct {
	s *Session
	t *Table[T]
}

func repoFor[T any](s *Session, t *Table[T]) *repo[T] {
	return &repo[T]{s: s, t: t}
}

func (r *repo[T]) Get(ctx context.Context, key ...any) (T, error) {
	if r.s.closed {
		var zero T
		return zero, uow.ErrClosed
	}
	return r.t.get(ctx, r.s.db, key...)
}

func (r *repo[T]) List(ctx context.Context, conds ...uow.Cond) ([]T, error) {
	if r.s.closed {
		return nil, uow.ErrClosed
	}
	return r.t.list(ctx, r.s.db, conds...)
}

func (r *repo[T]) Add(item T) {
	r.s.stage(stagedOp{
		desc: "insert " + r.t.Name,
		run:  func(ctx context.Context, tx DBTX) error { return r.t.insert(ctx, tx, item) },
	})
}

func (r *repo[T]) Update(item T) {
	r.s.stage(stagedOp{
		desc: "update " + r.t.Name,
		run:  func(ctx context.Context, tx DBTX) error { return r.t.update(ctx, tx, item) },
	})
}

func (r *repo[T]) Remove(item T) {
	r.s.stage(stagedOp{
		desc: "delete " + r.t.Name,
		run:  func(ctx context.Context, tx DBTX) error { return r.t.delete(ctx, tx, item) },
	})
}

// versioningRepo tags versioning inserts with their root so that a broken
// chain surfaces as uow.VersionConflictError. Versioning rows are append-only:
// staging an update or a delete panics.
type versioningRepo struct {
	*repo[model.Versioning]
}

func (r *versioningRepo) Add(v model.Versioning) {
	r.s.stage(stagedOp{
		desc: "insert versionings",
		root: uuid.NullUUID{UUID: v.UnificRootID, Valid: true},
		prev: v.PreviousVersionID,
		run:  func(ctx context.Context, tx DBTX) error { return r.t.insert(ctx, tx, v) },
	})
}

func (r *versioningRepo) Update(model.Versioning) {
	panic("store: versioning rows are append-only")
}

func (r *versioningRepo) Remove(model.Versioning) {
	panic("store: versioning rows are append-only")
}
