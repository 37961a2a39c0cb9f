// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
)

// LanguageCache is an immutable snapshot of the language table.
// It is built once at startup and safe for concurrent use without locking.
type LanguageCache struct {
	languages   []model.Language
	byCode      map[string]model.Language
	byID        map[uuid.UUID]model.Language
	defaultLang model.Language
	fallback    []uuid.UUID
}

// NewLanguageCache builds a snapshot from languages. fallbackCodes sets the
// fallback order; codes not listed follow in table order. Unknown codes in
// fallbackCodes are an error.
func NewLanguageCache(languages []model.Language, fallbackCodes []string) (*LanguageCache, error) {
	if len(languages) == 0 {
		return nil, fmt.Errorf("language table is empty")
	}

	c := &LanguageCache{
		languages: slices.Clone(languages),
		byCode:    make(map[string]model.Language, len(languages)),
		byID:      make(map[uuid.UUID]model.Language, len(languages)),
	}
	for _, l := range languages {
		c.byCode[l.Code] = l
		c.byID[l.ID] = l
		if l.IsDefault && c.defaultLang.ID == uuid.Nil {
			c.defaultLang = l
		}
	}
	if c.defaultLang.ID == uuid.Nil {
		c.defaultLang = languages[0]
	}

	seen := make(map[uuid.UUID]bool, len(languages))
	for _, code := range fallbackCodes {
		l, ok := c.byCode[code]
		if !ok {
			return nil, fmt.Errorf("fallback language %q is not defined", code)
		}
		if !seen[l.ID] {
			seen[l.ID] = true
			c.fallback = append(c.fallback, l.ID)
		}
	}
	for _, l := range languages {
		if !seen[l.ID] {
			c.fallback = append(c.fallback, l.ID)
		}
	}

	return c, nil
}

// ID returns the id of a language code.
func (c *LanguageCache) ID(code string) (uuid.UUID, bool) {
	l, ok := c.byCode[code]
	return l.ID, ok
}

// Code returns the code of a language id.
func (c *LanguageCache) Code(id uuid.UUID) (string, bool) {
	l, ok := c.byID[id]
	return l.Code, ok
}

// Codes maps language ids to codes, skipping unknown ids.
func (c *LanguageCache) Codes(ids []uuid.UUID) []string {
	codes := make([]string, 0, len(ids))
	for _, id := range ids {
		if l, ok := c.byID[id]; ok {
			codes = append(codes, l.Code)
		}
	}
	return codes
}

// Default returns the default language.
func (c *LanguageCache) Default() model.Language {
	return c.defaultLang
}

// FallbackOrder returns the language ids in fallback order.
func (c *LanguageCache) FallbackOrder() []uuid.UUID {
	return slices.Clone(c.fallback)
}

// All returns all languages in table order.
func (c *LanguageCache) All() []model.Language {
	return slices.Clone(c.languages)
}

type typeKey struct {
	group string
	code  string
}

// TypeCache is an immutable snapshot of the type-code table.
type TypeCache struct {
	byKey map[typeKey]model.TypeCode
	byID  map[uuid.UUID]model.TypeCode
}

// NewTypeCache builds a snapshot from type codes.
func NewTypeCache(types []model.TypeCode) *TypeCache {
	c := &TypeCache{
		byKey: make(map[typeKey]model.TypeCode, len(types)),
		byID:  make(map[uuid.UUID]model.TypeCode, len(types)),
	}
	for _, t := range types {
		c.byKey[typeKey{t.Group, t.Code}] = t
		c.byID[t.ID] = t
	}
	return c
}

// ID returns the id of a code within a type group.
func (c *TypeCache) ID(group, code string) (uuid.UUID, bool) {
	t, ok := c.byKey[typeKey{group, code}]
	return t.ID, ok
}

// Code returns the code of a type id.
func (c *TypeCache) Code(id uuid.UUID) (string, bool) {
	t, ok := c.byID[id]
	return t.Code, ok
}

// Group returns the type group of a type id.
func (c *TypeCache) Group(id uuid.UUID) (string, bool) {
	t, ok := c.byID[id]
	return t.Group, ok
}

// InGroup reports whether id is a type code of group.
func (c *TypeCache) InGroup(id uuid.UUID, group string) bool {
	t, ok := c.byID[id]
	return ok && t.Group == group
}

// Loader reads the reference tables.
type Loader interface {
	Languages(ctx context.Context) ([]model.Language, error)
	Types(ctx context.Context) ([]model.TypeCode, error)
}
