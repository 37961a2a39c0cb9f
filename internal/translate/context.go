// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate is the declarative mapping engine between persisted
// entities and view models.
//
// A Definition is an ordered list of steps built fresh for every call.
// Read definitions only copy values. Write definitions additionally declare
// how the target row is identified and where it is persisted; GetFinal then
// resolves create versus update and stages the row and its children on the
// unit of work. Nothing is written before the unit of work commits.
package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/cache"
	"github.com/olegiv/servreg-go/internal/uow"
)

// DefaultMissing is the value shown for localized text with no row in any language.
const DefaultMissing = "N/A"

// Context carries the per-request inputs of a translation.
// It is read-only while a translation runs.
type Context struct {
	Ctx       context.Context
	Work      uow.UnitOfWork
	Languages *cache.LanguageCache
	Types     *cache.TypeCache

	// RequestLanguage is the language reads resolve localized values for.
	RequestLanguage uuid.UUID
	// ActiveLanguage is the language writes store localized values in.
	ActiveLanguage uuid.UUID

	Now     time.Time
	Missing string
}

// Option configures a Context.
type Option func(*Context)

// WithLanguages sets the request and active languages.
func WithLanguages(request, active uuid.UUID) Option {
	return func(c *Context) {
		c.RequestLanguage = request
		c.ActiveLanguage = active
	}
}

// WithClock sets the translation time.
func WithClock(now time.Time) Option {
	return func(c *Context) { c.Now = now }
}

// WithMissing sets the value returned for missing localized text.
func WithMissing(missing string) Option {
	return func(c *Context) { c.Missing = missing }
}

// NewContext returns a Context. Both languages default to the default
// language of langs; the clock defaults to now in UTC.
func NewContext(ctx context.Context, work uow.UnitOfWork, langs *cache.LanguageCache, types *cache.TypeCache, opts ...Option) *Context {
	tc := &Context{
		Ctx:       ctx,
		Work:      work,
		Languages: langs,
		Types:     types,
		Missing:   DefaultMissing,
	}
	def := langs.Default().ID
	tc.RequestLanguage = def
	tc.ActiveLanguage = def
	for _, opt := range opts {
		opt(tc)
	}
	if tc.Now.IsZero() {
		tc.Now = time.Now().UTC()
	}
	return tc
}

// FallbackOrder returns the global language fallback order.
func (c *Context) FallbackOrder() []uuid.UUID {
	return c.Languages.FallbackOrder()
}

// TypeID resolves a type code of group.
func (c *Context) TypeID(group, code string) (uuid.UUID, error) {
	id, ok := c.Types.ID(group, code)
	if !ok {
		return uuid.Nil, &UnknownCodeError{Group: group, Code: code}
	}
	return id, nil
}

// TypeCode returns the code of a type id, or "" for an unknown id.
func (c *Context) TypeCode(id uuid.UUID) string {
	code, _ := c.Types.Code(id)
	return code
}

// LanguageID resolves a language code.
func (c *Context) LanguageID(code string) (uuid.UUID, error) {
	id, ok := c.Languages.ID(code)
	if !ok {
		return uuid.Nil, &UnknownCodeError{Group: "language", Code: code}
	}
	return id, nil
}

// LanguageCode returns the code of a language id, or "" for an unknown id.
func (c *Context) LanguageCode(id uuid.UUID) string {
	code, _ := c.Languages.Code(id)
	return code
}

// UnknownCodeError is returned for a type or language code that is not in
// the lookup tables.
type UnknownCodeError struct {
	Group string
	Code  string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown %s code %q", e.Group, e.Code)
}

// ValidationError is returned when an input value is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
