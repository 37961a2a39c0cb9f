// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type testView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Languages []string `json:"languages"`
}

func newTestTypedCache(t *testing.T) *TypedCache[testView] {
	t.Helper()
	mem := newTestMemoryCache(0)
	t.Cleanup(func() { _ = mem.Close() })
	return NewTypedCache[testView](mem, time.Hour)
}

func TestTypedCache_SetGet(t *testing.T) {
	cache := newTestTypedCache(t)
	ctx := context.Background()

	view := &testView{ID: "a", Name: "Neuvonta", Languages: []string{"fi", "sv"}}
	if err := cache.Set(ctx, "view:a", view); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := cache.Get(ctx, "view:a")
	if !found {
		t.Fatal("expected to find view:a")
	}
	if got.Name != view.Name || len(got.Languages) != 2 {
		t.Errorf("got %+v, want %+v", got, view)
	}

	if _, found := cache.Get(ctx, "missing"); found {
		t.Error("expected miss")
	}
}

func TestTypedCache_CorruptValueIsMiss(t *testing.T) {
	mem := newTestMemoryCache(0)
	defer func() { _ = mem.Close() }()
	cache := NewTypedCache[testView](mem, time.Hour)
	ctx := context.Background()

	_ = mem.Set(ctx, "bad", []byte("{not json"), 0)
	if _, found := cache.Get(ctx, "bad"); found {
		t.Error("expected undecodable value to be a miss")
	}
}

func TestTypedCache_GetOrLoad(t *testing.T) {
	cache := newTestTypedCache(t)
	ctx := context.Background()

	var calls atomic.Int32
	load := func(context.Context) (*testView, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return &testView{ID: "b"}, nil
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := cache.GetOrLoad(ctx, "view:b", load)
			if err != nil || v.ID != "b" {
				t.Errorf("GetOrLoad = %+v, %v", v, err)
			}
		}()
	}
	wg.Wait()

	if _, err := cache.GetOrLoad(ctx, "view:b", load); err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
	// Concurrent misses share a load; later calls hit the cache.
	if n := calls.Load(); n > 2 {
		t.Errorf("expected loads to be collapsed, got %d calls", n)
	}
}

func TestTypedCache_GetOrLoadError(t *testing.T) {
	cache := newTestTypedCache(t)
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := cache.GetOrLoad(ctx, "view:c", func(context.Context) (*testView, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, found := cache.Get(ctx, "view:c"); found {
		t.Error("failed load must not be cached")
	}
}

func TestTypedCache_DeleteByPrefix(t *testing.T) {
	cache := newTestTypedCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "view:x:1", &testView{ID: "1"})
	_ = cache.Set(ctx, "view:y:1", &testView{ID: "2"})

	if err := cache.DeleteByPrefix(ctx, "view:x:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	if _, found := cache.Get(ctx, "view:x:1"); found {
		t.Error("expected view:x:1 to be gone")
	}
	if _, found := cache.Get(ctx, "view:y:1"); !found {
		t.Error("expected view:y:1 to remain")
	}
}
