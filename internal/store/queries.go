// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/servreg-go/internal/model"
)

// ListLanguages returns all languages in fallback order.
func ListLanguages(ctx context.Context, db DBTX) ([]model.Language, error) {
	return languagesTable.list(ctx, db)
}

// ListTypes returns all type codes.
func ListTypes(ctx context.Context, db DBTX) ([]model.TypeCode, error) {
	return typesTable.list(ctx, db)
}

// InsertEvent appends one event to the event log.
func InsertEvent(ctx context.Context, db DBTX, e model.Event) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Level, e.Category, e.Message, e.Metadata, e.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("inserting event: %w", err)
	}
	return res.LastInsertId()
}

// ListEvents returns the newest events first.
func ListEvents(ctx context.Context, db DBTX, limit, offset int) ([]model.Event, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, level, category, message, metadata, created_at FROM events
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the number of events in the log.
func CountEvents(ctx context.Context, db DBTX) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}

// DeleteEventsBefore removes events created before cutoff and returns how
// many were removed.
func DeleteEventsBefore(ctx context.Context, db DBTX, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	return res.RowsAffected()
}

// Reference reads the reference tables; it satisfies cache.Loader.
type Reference struct {
	DB DBTX
}

// Languages returns all languages.
func (r Reference) Languages(ctx context.Context) ([]model.Language, error) {
	return ListLanguages(ctx, r.DB)
}

// Types returns all type codes.
func (r Reference) Types(ctx context.Context) ([]model.TypeCode, error) {
	return ListTypes(ctx, r.DB)
}
