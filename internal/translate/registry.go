// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/olegiv/servreg-go/internal/model"
)

// Target is the version a write lands on.
type Target[E any] struct {
	// Current is the version edited in place. It must already be loaded
	// with its child rows, or staged when it is a fresh copy of the head.
	Current *E
	// Header is the header of a new version; used when Current is nil.
	Header model.Versioned
}

// Reader builds view models of type V from entities of type E.
type Reader[E, V any] interface {
	Read(tc *Context, entity E) (V, error)
}

// Writer applies inputs of type V to entities of type E and stages the result.
type Writer[E, V any] interface {
	Write(tc *Context, input V, target Target[E]) (E, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc[E, V any] func(tc *Context, entity E) (V, error)

// Read calls f.
func (f ReaderFunc[E, V]) Read(tc *Context, entity E) (V, error) { return f(tc, entity) }

// WriterFunc adapts a function to Writer.
type WriterFunc[E, V any] func(tc *Context, input V, target Target[E]) (E, error)

// Write calls f.
func (f WriterFunc[E, V]) Write(tc *Context, input V, target Target[E]) (E, error) {
	return f(tc, input, target)
}

type direction string

const (
	toView   direction = "read"
	toEntity direction = "write"
)

type pair struct {
	entity reflect.Type
	view   reflect.Type
	dir    direction
}

func (p pair) String() string {
	return fmt.Sprintf("%s %s <-> %s", p.dir, p.entity, p.view)
}

func pairOf[E, V any](dir direction) pair {
	return pair{entity: reflect.TypeFor[E](), view: reflect.TypeFor[V](), dir: dir}
}

// Registry maps (entity, view model) type pairs to translators.
// It is filled once at startup; lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[pair]any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[pair]any)}
}

func (reg *Registry) add(key pair, t any) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.entries[key]; exists {
		panic(fmt.Sprintf("translate: %s registered twice", key))
	}
	reg.entries[key] = t
}

func (reg *Registry) get(key pair) (any, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	entry, ok := reg.entries[key]
	if !ok {
		return nil, fmt.Errorf("translate: no translator for %s", key)
	}
	return entry, nil
}

// RegisterReader adds the reader for (E, V). Registering a pair twice panics.
func RegisterReader[E, V any](reg *Registry, r Reader[E, V]) {
	reg.add(pairOf[E, V](toView), r)
}

// RegisterWriter adds the writer for (E, V). Registering a pair twice panics.
func RegisterWriter[E, V any](reg *Registry, w Writer[E, V]) {
	reg.add(pairOf[E, V](toEntity), w)
}

// LookupReader returns the reader registered for (E, V).
func LookupReader[E, V any](reg *Registry) (Reader[E, V], error) {
	entry, err := reg.get(pairOf[E, V](toView))
	if err != nil {
		return nil, err
	}
	return entry.(Reader[E, V]), nil
}

// LookupWriter returns the writer registered for (E, V).
func LookupWriter[E, V any](reg *Registry) (Writer[E, V], error) {
	entry, err := reg.get(pairOf[E, V](toEntity))
	if err != nil {
		return nil, err
	}
	return entry.(Writer[E, V]), nil
}

// Len returns the number of registered translators.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.entries)
}
