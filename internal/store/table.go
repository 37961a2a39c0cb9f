// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/olegiv/servreg-go/internal/uow"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Table maps a model type to one SQL table.
type Table[T any] struct {
	Name string
	// Columns lists all columns, key columns first.
	Columns []string
	// Keys is the number of leading key columns.
	Keys int
	// OrderBy is appended to list queries.
	OrderBy string
	// Values returns the column values of an item in Columns order.
	Values func(T) []any
	// Scan reads one row selected in Columns order.
	Scan func(rowScanner) (T, error)
}

func (t *Table[T]) selectList() string {
	return "SELECT " + strings.Join(t.Columns, ", ") + " FROM " + t.Name
}

func (t *Table[T]) keyWhere() string {
	parts := make([]string, t.Keys)
	for i, c := range t.Columns[:t.Keys] {
		parts[i] = c + " = ?"
	}
	return strings.Join(parts, " AND ")
}

func (t *Table[T]) keyValues(item T) []any {
	return normalize(t.Values(item)[:t.Keys])
}

func (t *Table[T]) get(ctx context.Context, db DBTX, key ...any) (T, error) {
	var zero T
	if len(key) != t.Keys {
		return zero, fmt.Errorf("%s: expected %d key values, got %d", t.Name, t.Keys, len(key))
	}

	query := t.selectList() + " WHERE " + t.keyWhere()
	item, err := t.Scan(db.QueryRowContext(ctx, query, normalize(key)...))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %v: %w", t.Name, key, uow.ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("loading %s: %w", t.Name, err)
	}
	return item, nil
}

func (t *Table[T]) list(ctx context.Context, db DBTX, conds ...uow.Cond) ([]T, error) {
	query := t.selectList()
	args := make([]any, 0, len(conds))

	if len(conds) > 0 {
		parts := make([]string, len(conds))
		for i, c := range conds {
			if !slices.Contains(t.Columns, c.Column) {
				return nil, fmt.Errorf("%s: unknown column %q", t.Name, c.Column)
			}
			switch c.Op {
			case uow.OpEq, uow.OpNe, uow.OpLte:
			default:
				return nil, fmt.Errorf("%s: unsupported operator %q", t.Name, c.Op)
			}
			if c.Value == nil {
				if c.Op == uow.OpNe {
					parts[i] = c.Column + " IS NOT NULL"
				} else {
					parts[i] = c.Column + " IS NULL"
				}
				continue
			}
			parts[i] = c.Column + " " + string(c.Op) + " ?"
			args = append(args, c.Value)
		}
		query += " WHERE " + strings.Join(parts, " AND ")
	}
	if t.OrderBy != "" {
		query += " ORDER BY " + t.OrderBy
	}

	rows, err := db.QueryContext(ctx, query, normalize(args)...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.Name, err)
	}
	defer func() { _ = rows.Close() }()

	var items []T
	for rows.Next() {
		item, err := t.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.Name, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.Name, err)
	}
	return items, nil
}

func (t *Table[T]) insert(ctx context.Context, db DBTX, item T) error {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	query := "INSERT INTO " + t.Name + " (" + strings.Join(t.Columns, ", ") + ") VALUES (" + marks + ")"

	if _, err := db.ExecContext(ctx, query, normalize(t.Values(item))...); err != nil {
		return fmt.Errorf("inserting %s: %w", t.Name, err)
	}
	return nil
}

func (t *Table[T]) update(ctx context.Context, db DBTX, item T) error {
	values := normalize(t.Values(item))
	sets := make([]string, 0, len(t.Columns)-t.Keys)
	for _, c := range t.Columns[t.Keys:] {
		sets = append(sets, c+" = ?")
	}
	query := "UPDATE " + t.Name + " SET " + strings.Join(sets, ", ") + " WHERE " + t.keyWhere()
	args := append(values[t.Keys:], values[:t.Keys]...)

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", t.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s: %w", t.Name, err)
	}
	if n == 0 {
		return fmt.Errorf("updating %s %v: %w", t.Name, values[:t.Keys], uow.ErrNotFound)
	}
	return nil
}

// delete removes the row with the item's key. Deleting a row that is already
// gone (for example through a cascade) is not an error.
func (t *Table[T]) delete(ctx context.Context, db DBTX, item T) error {
	query := "DELETE FROM " + t.Name + " WHERE " + t.keyWhere()
	if _, err := db.ExecContext(ctx, query, t.keyValues(item)...); err != nil {
		return fmt.Errorf("deleting %s: %w", t.Name, err)
	}
	return nil
}

// normalize stores every timestamp in UTC so that text comparisons
// between stored and bound times order correctly.
func normalize(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		switch tv := v.(type) {
		case time.Time:
			out[i] = tv.UTC()
		case *time.Time:
			if tv == nil {
				out[i] = nil
			} else {
				out[i] = tv.UTC()
			}
		default:
			out[i] = v
		}
	}
	return out
}
