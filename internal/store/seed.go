// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// seedNamespace scopes the name-based ids of reference data.
var seedNamespace = uuid.MustParse("6f1b8f5e-4c1d-4f7a-9a53-2f3e0d6c1b20")

type seedFile struct {
	Languages []struct {
		Code       string `yaml:"code"`
		Name       string `yaml:"name"`
		NativeName string `yaml:"native_name"`
		Default    bool   `yaml:"default"`
	} `yaml:"languages"`
	Types map[string][]string `yaml:"types"`
}

// LanguageID returns the id the seed assigns to a language code.
func LanguageID(code string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte("language:"+code))
}

// TypeID returns the id the seed assigns to a type code of a group.
func TypeID(group, code string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte("type:"+group+":"+code))
}

// Seed loads the reference languages and type codes. Existing rows are kept.
func Seed(ctx context.Context, db *sql.DB) error {
	var seed seedFile
	if err := yaml.Unmarshal(seedYAML, &seed); err != nil {
		return fmt.Errorf("parsing seed data: %w", err)
	}

	var added int64
	err := WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		for i, l := range seed.Languages {
			res, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO languages (id, code, name, native_name, is_default, position) VALUES (?, ?, ?, ?, ?, ?)`,
				LanguageID(l.Code), l.Code, l.Name, l.NativeName, l.Default, i)
			if err != nil {
				return fmt.Errorf("seeding language %s: %w", l.Code, err)
			}
			n, _ := res.RowsAffected()
			added += n
		}

		// Map order is random; sort groups so positions are stable.
		groups := make([]string, 0, len(seed.Types))
		for g := range seed.Types {
			groups = append(groups, g)
		}
		slices.Sort(groups)

		for _, g := range groups {
			for i, code := range seed.Types[g] {
				res, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO types (id, type_group, code, position) VALUES (?, ?, ?, ?)`,
					TypeID(g, code), g, code, i)
				if err != nil {
					return fmt.Errorf("seeding type %s/%s: %w", g, code, err)
				}
				n, _ := res.RowsAffected()
				added += n
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if added == 0 {
		slog.Info("reference data already present, skipping seed")
	} else {
		slog.Info("seeded reference data", "rows", added)
	}
	return nil
}
