// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package versioning

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/store"
	"github.com/olegiv/servreg-go/internal/testutil"
	"github.com/olegiv/servreg-go/internal/uow"
)

var t0 = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func session(db *sql.DB) *store.Session {
	return store.NewSession(db, testutil.TestLoggerSilent())
}

// commitVersion creates and commits the version following basis.
func commitVersion(t *testing.T, db *sql.DB, rootID uuid.UUID, basis *model.Versioned, bump Bump, at time.Time) Draft {
	t.Helper()
	s := session(db)
	d, err := CreateNextVersion(context.Background(), s, rootID, basis, bump, at)
	require.NoError(t, err)
	require.NoError(t, s.Commit(context.Background()))
	return d
}

func newRoot(t *testing.T, db *sql.DB) model.Root {
	t.Helper()
	s := session(db)
	root, created, err := EnsureRoot(context.Background(), s, model.KindService, uuid.Nil, t0)
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, s.Commit(context.Background()))
	return root
}

func TestCreateNextVersion_Numbering(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	root := newRoot(t, db)

	v1 := commitVersion(t, db, root.ID, nil, Minor, t0)
	assert.Equal(t, "0.1", v1.Versioning.Label())
	assert.False(t, v1.Versioning.PreviousVersionID.Valid)
	assert.Equal(t, root.ID, v1.Header.UnificRootID)
	assert.Equal(t, uuid.NullUUID{UUID: v1.Versioning.ID, Valid: true}, v1.Header.VersioningID)

	v2 := commitVersion(t, db, root.ID, &v1.Header, Minor, t0.Add(time.Minute))
	assert.Equal(t, "0.2", v2.Versioning.Label())
	assert.Equal(t, v1.Versioning.ID, v2.Versioning.PreviousVersionID.UUID)

	v3 := commitVersion(t, db, root.ID, &v2.Header, Major, t0.Add(2*time.Minute))
	assert.Equal(t, "1.0", v3.Versioning.Label())

	s := session(db)
	defer s.Discard()

	head, ok, err := Head(context.Background(), s, root.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v3.Versioning.ID, head.ID)

	history, err := History(context.Background(), s, root.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"1.0", "0.2", "0.1"}, []string{history[0].Label(), history[1].Label(), history[2].Label()})
}

func TestCreateNextVersion_FirstMajor(t *testing.T) {
	work := testutil.NewWork()
	root := uuid.New()

	d, err := CreateNextVersion(context.Background(), work, root, nil, Major, t0)
	require.NoError(t, err)
	assert.Equal(t, "1.0", d.Versioning.Label())
	assert.Equal(t, []string{"add versionings"}, work.Tables())
	assert.Equal(t, uuid.NullUUID{}, work.Heads[root])
}

func TestCreateNextVersion_StaleBasisConflicts(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	root := newRoot(t, db)
	v1 := commitVersion(t, db, root.ID, nil, Minor, t0)

	// Two writers start from v1.
	a, b := session(db), session(db)
	_, err := CreateNextVersion(context.Background(), a, root.ID, &v1.Header, Minor, t0.Add(time.Minute))
	require.NoError(t, err)
	_, err = CreateNextVersion(context.Background(), b, root.ID, &v1.Header, Minor, t0.Add(time.Minute))
	require.NoError(t, err)

	require.NoError(t, a.Commit(context.Background()))
	err = b.Commit(context.Background())

	require.ErrorIs(t, err, uow.ErrVersionConflict)
	var conflict *uow.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, v1.Versioning.ID, conflict.Expected.UUID)
	assert.NotEqual(t, conflict.Expected, conflict.Actual)
}

func TestCreateNextVersion_ConcurrentWritersOneWins(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	root := newRoot(t, db)
	v1 := commitVersion(t, db, root.ID, nil, Minor, t0)

	const writers = 4
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := session(db)
			if _, err := CreateNextVersion(context.Background(), s, root.ID, &v1.Header, Minor, t0.Add(time.Minute)); err != nil {
				errs[i] = err
				s.Discard()
				return
			}
			errs[i] = s.Commit(context.Background())
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, uow.ErrVersionConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, wins)

	s := session(db)
	defer s.Discard()
	history, err := History(context.Background(), s, root.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestEnsureRoot(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	root := newRoot(t, db)

	s := session(db)
	defer s.Discard()

	got, created, err := EnsureRoot(context.Background(), s, model.KindService, root.ID, t0)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, root.ID, got.ID)

	_, _, err = EnsureRoot(context.Background(), s, model.KindChannel, root.ID, t0)
	assert.ErrorIs(t, err, ErrKindMismatch)

	wanted := uuid.New()
	got, created, err = EnsureRoot(context.Background(), s, model.KindChannel, wanted, t0)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, wanted, got.ID)
	assert.Equal(t, 1, s.Staged())
}

func TestWalk(t *testing.T) {
	a := model.Versioning{ID: uuid.New()}
	b := model.Versioning{ID: uuid.New(), PreviousVersionID: uuid.NullUUID{UUID: a.ID, Valid: true}}
	c := model.Versioning{ID: uuid.New(), PreviousVersionID: uuid.NullUUID{UUID: b.ID, Valid: true}}

	chain, err := Walk(c, []model.Versioning{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, []model.Versioning{c, b, a}, chain)

	t.Run("cycle", func(t *testing.T) {
		loopA := a
		loopA.PreviousVersionID = uuid.NullUUID{UUID: c.ID, Valid: true}
		_, err := Walk(c, []model.Versioning{loopA, b, c})
		assert.ErrorIs(t, err, ErrCycle)
	})

	t.Run("self reference", func(t *testing.T) {
		self := model.Versioning{ID: uuid.New()}
		self.PreviousVersionID = uuid.NullUUID{UUID: self.ID, Valid: true}
		_, err := Walk(self, []model.Versioning{self})
		assert.ErrorIs(t, err, ErrCycle)
	})

	t.Run("broken", func(t *testing.T) {
		_, err := Walk(c, []model.Versioning{b, c})
		assert.ErrorIs(t, err, ErrBrokenChain)
	})
}

func TestHeadOf(t *testing.T) {
	_, ok := headOf(nil)
	assert.False(t, ok)

	a := model.Versioning{ID: uuid.New(), CreatedAt: t0}
	b := model.Versioning{ID: uuid.New(), CreatedAt: t0.Add(time.Hour), PreviousVersionID: uuid.NullUUID{UUID: a.ID, Valid: true}}
	head, ok := headOf([]model.Versioning{b, a})
	require.True(t, ok)
	assert.Equal(t, b.ID, head.ID)
}

func TestPlan(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	root := newRoot(t, db)

	s := session(db)
	p, err := Prepare(context.Background(), s, model.KindService, root.ID, t0)
	require.NoError(t, err)
	assert.False(t, p.NewRoot)
	assert.Nil(t, p.Head)
	assert.False(t, p.InPlace(nil), "no head means a new version")
	s.Discard()

	v1 := commitVersion(t, db, root.ID, nil, Minor, t0)

	s = session(db)
	defer s.Discard()
	p, err = Prepare(context.Background(), s, model.KindService, root.ID, t0)
	require.NoError(t, err)
	require.NotNil(t, p.Head)
	assert.Equal(t, v1.Versioning.ID, p.Head.ID)

	draft := []model.LanguageAvailability{{Status: model.StatusDraft}}
	published := []model.LanguageAvailability{{Status: model.StatusDraft}, {Status: model.StatusPublished}}
	assert.True(t, p.InPlace(draft))
	assert.False(t, p.InPlace(published))

	fresh, err := Prepare(context.Background(), s, model.KindOrganization, uuid.Nil, t0)
	require.NoError(t, err)
	assert.True(t, fresh.NewRoot)
	assert.Nil(t, fresh.Head)
}
