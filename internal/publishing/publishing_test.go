// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package publishing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/store"
	"github.com/olegiv/servreg-go/internal/testutil"
)

var (
	t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	fi = store.LanguageID("fi")
	sv = store.LanguageID("sv")
	en = store.LanguageID("en")
)

type subject struct {
	model.Versioned
	langs []uuid.UUID
}

func (s *subject) Kind() model.EntityKind          { return model.KindService }
func (s *subject) DeclaredLanguages() []uuid.UUID { return s.langs }

func newSubject(langs ...uuid.UUID) *subject {
	return &subject{Versioned: model.Versioned{ID: uuid.New(), UnificRootID: uuid.New()}, langs: langs}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.PublishingStatus
		want     bool
	}{
		{"", model.StatusDraft, true},
		{"", model.StatusPublished, false},
		{"", model.StatusRemoved, false},
		{model.StatusDraft, model.StatusPublished, true},
		{model.StatusDraft, model.StatusOldPublished, false},
		{model.StatusPublished, model.StatusOldPublished, true},
		{model.StatusPublished, model.StatusDraft, false},
		{model.StatusOldPublished, model.StatusPublished, false},
		{model.StatusPublished, model.StatusRemoved, true},
		{model.StatusOldPublished, model.StatusDeleted, true},
		{model.StatusRemoved, model.StatusDraft, true},
		{model.StatusDeleted, model.StatusDraft, true},
		{model.StatusDeleted, model.StatusPublished, false},
		{model.StatusPublished, model.StatusPublished, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestSetStatus_NewRowAndUpdate(t *testing.T) {
	work := testutil.NewWork()
	s := newSubject(fi, sv)
	a := New(work, s)

	require.NoError(t, a.SetStatus(fi, model.StatusDraft, t0))
	require.NoError(t, a.SetStatus(fi, model.StatusPublished, t0.Add(time.Hour)))

	assert.Equal(t, []string{"add language_availabilities", "update language_availabilities"}, work.Tables())
	row, ok := a.Row(fi)
	require.True(t, ok)
	assert.Equal(t, model.StatusPublished, row.Status)
	require.NotNil(t, row.PublishedAt)
	assert.Equal(t, t0.Add(time.Hour), *row.PublishedAt)
	assert.Equal(t, model.KindService, row.Kind)

	// sv untouched
	assert.Equal(t, model.PublishingStatus(""), a.Status(sv))
	assert.True(t, a.IsPublished())
	assert.True(t, a.IsClosed())
}

func TestSetStatus_SameStatusIsNoOp(t *testing.T) {
	work := testutil.NewWork()
	a := New(work, newSubject(fi))
	require.NoError(t, a.SetStatus(fi, model.StatusDraft, t0))
	require.NoError(t, a.SetStatus(fi, model.StatusDraft, t0.Add(time.Hour)))
	assert.Len(t, work.Ops, 1)
}

func TestSetStatus_Errors(t *testing.T) {
	work := testutil.NewWork()
	a := New(work, newSubject(fi))

	err := a.SetStatus(en, model.StatusDraft, t0)
	var unsupported *UnsupportedLanguageError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, en, unsupported.LanguageID)

	err = a.SetStatus(fi, model.StatusPublished, t0)
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.PublishingStatus(""), invalid.From)
	assert.Contains(t, err.Error(), "from none to published")

	assert.Empty(t, work.Ops)
}

func TestSetStatus_RemoveUndeclaredLanguageWithRow(t *testing.T) {
	work := testutil.NewWork()
	s := newSubject(fi, sv)
	a := New(work, s)
	require.NoError(t, a.Touch([]uuid.UUID{fi, sv}, t0))

	// sv texts were dropped after the row was created
	a.declared = []uuid.UUID{fi}
	require.NoError(t, a.SetStatus(sv, model.StatusRemoved, t0))
	assert.Equal(t, model.StatusRemoved, a.Status(sv))

	assert.Error(t, a.SetStatus(sv, model.StatusDraft, t0))
}

func TestTouch(t *testing.T) {
	work := testutil.NewWork()
	a := New(work, newSubject(fi, sv))
	require.NoError(t, a.SetStatus(fi, model.StatusDraft, t0))
	require.NoError(t, a.SetStatus(fi, model.StatusRemoved, t0))
	work.Ops = nil

	require.NoError(t, a.Touch([]uuid.UUID{fi, sv}, t0))
	assert.Equal(t, []string{"update language_availabilities", "add language_availabilities"}, work.Tables())
	assert.Equal(t, model.StatusDraft, a.Status(fi))
	assert.Equal(t, model.StatusDraft, a.Status(sv))
	assert.ElementsMatch(t, []uuid.UUID{fi, sv}, a.AvailableLanguages())
	assert.Equal(t, model.StatusDraft, a.AggregateStatus())
}

func TestSchedule(t *testing.T) {
	work := testutil.NewWork()
	a := New(work, newSubject(fi, sv))

	at := t0.Add(24 * time.Hour)
	var invalid *InvalidTransitionError
	require.ErrorAs(t, a.Schedule(fi, &at, t0), &invalid, "no row yet")

	require.NoError(t, a.Touch([]uuid.UUID{fi}, t0))
	require.NoError(t, a.Schedule(fi, &at, t0))
	row, _ := a.Row(fi)
	require.NotNil(t, row.ScheduledPublishAt)
	assert.Equal(t, at, *row.ScheduledPublishAt)

	require.NoError(t, a.Publish([]uuid.UUID{fi}, nil, at))
	row, _ = a.Row(fi)
	assert.Nil(t, row.ScheduledPublishAt)
	assert.Equal(t, model.StatusPublished, row.Status)
}

// Publishing one language of a new version archives only that language
// of the previous version.
func TestPublish_ArchivesPerLanguage(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	v1 := newSubject(fi, sv)
	v2 := newSubject(fi, sv)
	v2.UnificRootID = v1.UnificRootID

	s := store.NewSession(db, testutil.TestLoggerSilent())
	a1 := New(s, v1)
	require.NoError(t, a1.Publish([]uuid.UUID{fi, sv}, nil, t0))
	a2 := New(s, v2)
	require.NoError(t, a2.Touch([]uuid.UUID{fi, sv}, t0.Add(time.Hour)))
	require.NoError(t, s.Commit(ctx))

	s = store.NewSession(db, testutil.TestLoggerSilent())
	a1, err := Load(ctx, s, v1)
	require.NoError(t, err)
	a2, err = Load(ctx, s, v2)
	require.NoError(t, err)
	require.NoError(t, a2.Publish([]uuid.UUID{fi}, []*Availability{a1, a2}, t0.Add(2*time.Hour)))
	require.NoError(t, s.Commit(ctx))

	s = store.NewSession(db, testutil.TestLoggerSilent())
	defer s.Discard()
	a1, err = Load(ctx, s, v1)
	require.NoError(t, err)
	a2, err = Load(ctx, s, v2)
	require.NoError(t, err)

	assert.Equal(t, model.StatusOldPublished, a1.Status(fi))
	assert.Equal(t, model.StatusPublished, a1.Status(sv))
	assert.Equal(t, model.StatusPublished, a2.Status(fi))
	assert.Equal(t, model.StatusDraft, a2.Status(sv))
}

func TestPublish_UndeclaredLanguage(t *testing.T) {
	work := testutil.NewWork()
	a := New(work, newSubject(fi))
	err := a.Publish([]uuid.UUID{fi, en}, nil, t0)
	var unsupported *UnsupportedLanguageError
	require.ErrorAs(t, err, &unsupported)
	assert.Empty(t, work.Ops)
}

func TestDue(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	past, future := t0.Add(-time.Hour), t0.Add(time.Hour)
	due, later, published := newSubject(fi), newSubject(fi), newSubject(fi)

	s := store.NewSession(db, testutil.TestLoggerSilent())
	for subj, at := range map[*subject]time.Time{due: past, later: future, published: past} {
		a := New(s, subj)
		require.NoError(t, a.Touch([]uuid.UUID{fi}, t0))
		require.NoError(t, a.Schedule(fi, &at, t0))
		if subj == published {
			require.NoError(t, a.Publish([]uuid.UUID{fi}, nil, t0))
		}
	}
	require.NoError(t, s.Commit(ctx))

	s = store.NewSession(db, testutil.TestLoggerSilent())
	defer s.Discard()
	rows, err := Due(ctx, s, t0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, due.ID, rows[0].VersionedID)
}
