// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/uow"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		driver   string
		path     string
		contains []string
		wantErr  bool
	}{
		{
			name:     "modernc",
			driver:   DriverModernc,
			path:     "/tmp/a.db",
			contains: []string{"file:/tmp/a.db?", "_pragma=foreign_keys(1)", "_txlock=immediate", "_pragma=busy_timeout(5000)"},
		},
		{
			name:     "mattn",
			driver:   DriverMattn,
			path:     "file:b.db?cache=shared",
			contains: []string{"file:b.db?cache=shared&", "_foreign_keys=on", "_txlock=immediate"},
		},
		{name: "unknown", driver: "postgres", path: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := buildDSN(DBConfig{Driver: tt.driver}, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, dsn, s)
			}
		})
	}
}

func TestWithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO roots").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return rootsTable.insert(ctx, tx, newRoot(model.KindService))
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = WithTx(context.Background(), db, nil, func(context.Context, DBTX) error { return boom })
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_UpdateStatement(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	v := model.Versioned{ID: uuid.New()}
	a := model.LanguageAvailability{VersionedID: v.ID, LanguageID: uuid.New(), Kind: model.KindService, Status: model.StatusPublished}

	mock.ExpectExec("UPDATE language_availabilities SET kind = ?, status = ?, created_at = ?, modified_at = ?, published_at = ?, scheduled_publish_at = ? WHERE versioned_id = ? AND language_id = ?").
		WithArgs("service", "published", sqlmock.AnyArg(), sqlmock.AnyArg(), nil, nil, a.VersionedID.String(), a.LanguageID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = availabilitiesTable.update(context.Background(), db, a)
	assert.ErrorIs(t, err, uow.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalize(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	local := time.Date(2026, 3, 1, 12, 0, 0, 0, loc)
	var nilTime *time.Time

	out := normalize([]any{local, &local, nilTime, "x"})

	assert.Equal(t, time.UTC, out[0].(time.Time).Location())
	assert.Equal(t, 10, out[1].(time.Time).Hour())
	assert.Nil(t, out[2])
	assert.Equal(t, "x", out[3])
}
