// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/servreg-go/internal/cache"
	"github.com/olegiv/servreg-go/internal/i18n"
	"github.com/olegiv/servreg-go/internal/middleware"
	"github.com/olegiv/servreg-go/internal/service"
	"github.com/olegiv/servreg-go/internal/store"
	"github.com/olegiv/servreg-go/internal/testutil"
	"github.com/olegiv/servreg-go/internal/translators"
	"github.com/olegiv/servreg-go/internal/version"
)

// testRouter builds the API over a fresh database, mounted at /api/v1 the
// way the server mounts it.
func testRouter(t *testing.T) (http.Handler, *service.Registries) {
	t.Helper()
	require.NoError(t, i18n.Init(nil))

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	logger := testutil.TestLoggerSilent()
	manager, err := cache.NewManager(context.Background(), cache.NewMemoryCache(cache.MemoryCacheOptions{}),
		store.Reference{DB: db}, []string{"fi", "sv", "en"}, logger)
	require.NoError(t, err)

	regs, err := service.New(service.Deps{
		Open:        store.Opener(db, logger),
		Languages:   manager.Languages,
		Types:       manager.Types,
		Translators: translators.NewRegistry(),
		Views:       manager,
		CacheTTL:    time.Minute,
		Logger:      logger,
	})
	require.NoError(t, err)

	h := NewHandler(regs, manager.Languages, version.Info{Version: "v0.0.0-test", GitCommit: "abc1234"}, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Language(manager.Languages, logger))
	r.Route("/api/v1", h.Register)
	return r, regs
}

// do sends a request through the router. body may be empty.
func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// assertStatusCode checks that the response has the expected status code.
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Fatalf("expected status %d, got %d: %s", expected, w.Code, w.Body.String())
	}
}

// assertErrorResponse unmarshals and validates an error response.
func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error.Code != expectedCode {
		t.Errorf("expected code '%s', got %s", expectedCode, resp.Error.Code)
	}
	return resp
}

// dataResponse is a generic wrapper for API responses with a "data" field.
type dataResponse[T any] struct {
	Data T     `json:"data"`
	Meta *Meta `json:"meta"`
}

// unmarshalData unmarshals a JSON response body into the specified type.
func unmarshalData[T any](t *testing.T, w *httptest.ResponseRecorder) (T, *Meta) {
	t.Helper()
	var resp dataResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data, resp.Meta
}
