// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/publishing"
	"github.com/olegiv/servreg-go/internal/testutil"
	"github.com/olegiv/servreg-go/internal/translate"
	"github.com/olegiv/servreg-go/internal/uow"
	"github.com/olegiv/servreg-go/internal/version"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusOK, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "value", resp["key"])
}

func TestWriteSuccessAndCreated(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, []string{"a", "b"}, &Meta{Total: 2})
	assert.Equal(t, http.StatusOK, w.Code)
	data, meta := unmarshalData[[]string](t, w)
	assert.Equal(t, []string{"a", "b"}, data)
	require.NotNil(t, meta)
	assert.EqualValues(t, 2, meta.Total)

	w = httptest.NewRecorder()
	WriteCreated(w, map[string]string{"id": "x"})
	assert.Equal(t, http.StatusCreated, w.Code)
	created, meta := unmarshalData[map[string]string](t, w)
	assert.Equal(t, "x", created["id"])
	assert.Nil(t, meta)
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { WriteBadRequest(w, "bad", nil) }, http.StatusBadRequest, "bad_request"},
		{"not found", func(w http.ResponseWriter) { WriteNotFound(w, "missing") }, http.StatusNotFound, "not_found"},
		{"internal", func(w http.ResponseWriter) { WriteInternalError(w, "boom") }, http.StatusInternalServerError, "internal_error"},
		{"validation", func(w http.ResponseWriter) {
			WriteValidationError(w, "invalid", map[string]string{"name": "required"})
		}, http.StatusUnprocessableEntity, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assertStatusCode(t, w, tt.status)
			assertErrorResponse(t, w, tt.code)
		})
	}
}

func TestStatus(t *testing.T) {
	router, _ := testRouter(t)

	w := do(t, router, http.MethodGet, "/api/v1/status", "")
	assertStatusCode(t, w, http.StatusOK)
	status, _ := unmarshalData[StatusResponse](t, w)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "v1", status.Version)
	assert.Equal(t, "v0.0.0-test", status.Build)
}

func TestLanguages(t *testing.T) {
	router, _ := testRouter(t)

	w := do(t, router, http.MethodGet, "/api/v1/languages", "")
	assertStatusCode(t, w, http.StatusOK)
	langs, meta := unmarshalData[[]LanguageResponse](t, w)
	require.Len(t, langs, 3)
	assert.EqualValues(t, 3, meta.Total)
	assert.Equal(t, "fi", langs[0].Code)
	assert.True(t, langs[0].Default)
	assert.Equal(t, "sv", langs[1].Code)
	assert.Equal(t, "en", langs[2].Code)
}

func TestServiceRoutes(t *testing.T) {
	router, _ := testRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/services?lang=fi",
		`{"type":"Service","name":"Rakennuslupa","summary":"Lupa rakentamiseen"}`)
	assertStatusCode(t, w, http.StatusCreated)
	saved, _ := unmarshalData[viewmodel.Saved](t, w)
	assert.True(t, saved.Created)
	assert.Equal(t, "0.1", saved.Version)
	assert.Equal(t, fmt.Sprintf("/api/v1/services/%s", saved.ID), w.Header().Get("Location"))
	base := "/api/v1/services/" + saved.ID.String()

	w = do(t, router, http.MethodGet, base+"?lang=fi", "")
	assertStatusCode(t, w, http.StatusOK)
	v, _ := unmarshalData[viewmodel.Service](t, w)
	assert.Equal(t, "Rakennuslupa", v.Name)
	assert.Equal(t, "draft", v.Status)

	// Nothing is published yet.
	w = do(t, router, http.MethodGet, base+"?lang=fi&published=true", "")
	assertStatusCode(t, w, http.StatusNotFound)
	assertErrorResponse(t, w, "not_found")

	// The draft head is edited in place; the id comes from the URL.
	w = do(t, router, http.MethodPut, base+"?lang=sv",
		fmt.Sprintf(`{"version_id":%q,"name":"Bygglov"}`, saved.VersionID))
	assertStatusCode(t, w, http.StatusOK)
	sv, _ := unmarshalData[viewmodel.Saved](t, w)
	assert.True(t, sv.InPlace)

	w = do(t, router, http.MethodPost, base+"/publish", "")
	assertStatusCode(t, w, http.StatusOK)
	info, _ := unmarshalData[viewmodel.VersionInfo](t, w)
	assert.Equal(t, "published", info.Status)
	assert.Equal(t, map[string]string{"fi": "published", "sv": "published"}, info.Languages)

	w = do(t, router, http.MethodGet, base+"?published=true", "", "Accept-Language", "sv-FI,sv;q=0.9")
	assertStatusCode(t, w, http.StatusOK)
	v, _ = unmarshalData[viewmodel.Service](t, w)
	assert.Equal(t, "Bygglov", v.Name)
	assert.Equal(t, "sv", v.Language)

	// A published head is copied into a new version.
	w = do(t, router, http.MethodPut, base+"?lang=fi",
		fmt.Sprintf(`{"id":%q,"version_id":%q,"name":"Rakennuslupa 2"}`, saved.ID, saved.VersionID))
	assertStatusCode(t, w, http.StatusOK)
	next, _ := unmarshalData[viewmodel.Saved](t, w)
	assert.False(t, next.InPlace)
	assert.Equal(t, "0.2", next.Version)

	// Editing the old version again conflicts.
	w = do(t, router, http.MethodPut, base+"?lang=fi",
		fmt.Sprintf(`{"version_id":%q,"name":"Vanha"}`, saved.VersionID))
	assertStatusCode(t, w, http.StatusConflict)
	assertErrorResponse(t, w, "version_conflict")

	w = do(t, router, http.MethodGet, base+"/history", "")
	assertStatusCode(t, w, http.StatusOK)
	history, meta := unmarshalData[[]viewmodel.VersionInfo](t, w)
	require.Len(t, history, 2)
	assert.EqualValues(t, 2, meta.Total)
	assert.Equal(t, "0.2", history[0].Version)
	assert.Equal(t, "0.1", history[1].Version)

	w = do(t, router, http.MethodPost, base+"/languages/sv/remove", "")
	assertStatusCode(t, w, http.StatusNoContent)

	w = do(t, router, http.MethodGet, base+"?lang=sv&published=true", "")
	assertStatusCode(t, w, http.StatusOK)
	v, _ = unmarshalData[viewmodel.Service](t, w)
	assert.NotContains(t, v.Languages, "sv")

	w = do(t, router, http.MethodDelete, base, "")
	assertStatusCode(t, w, http.StatusNoContent)

	w = do(t, router, http.MethodGet, base, "")
	assertStatusCode(t, w, http.StatusNotFound)
}

func TestScheduledPublishRoute(t *testing.T) {
	router, _ := testRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/organizations",
		`{"type":"Municipality","name":"Espoon kaupunki","phones":[{"number":"098161","prefix_number":"+358"}]}`)
	assertStatusCode(t, w, http.StatusCreated)
	saved, _ := unmarshalData[viewmodel.Saved](t, w)
	base := "/api/v1/organizations/" + saved.ID.String()

	w = do(t, router, http.MethodPost, base+"/publish", `{"languages":["fi"],"at":"2999-01-01T08:00:00Z"}`)
	assertStatusCode(t, w, http.StatusOK)
	info, _ := unmarshalData[viewmodel.VersionInfo](t, w)
	assert.Equal(t, "draft", info.Languages["fi"])

	w = do(t, router, http.MethodGet, base+"?published=true", "")
	assertStatusCode(t, w, http.StatusNotFound)
}

func TestRouteErrors(t *testing.T) {
	router, regs := testRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/services", `{"type":"Service","name":"Nimi"}`)
	assertStatusCode(t, w, http.StatusCreated)
	saved, _ := unmarshalData[viewmodel.Saved](t, w)
	base := "/api/v1/services/" + saved.ID.String()

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		headers []string
		status  int
		code    string
		message string
	}{
		{name: "malformed id", method: http.MethodGet, path: "/api/v1/services/not-a-uuid",
			status: http.StatusBadRequest, code: "bad_request"},
		{name: "unknown field", method: http.MethodPost, path: "/api/v1/services", body: `{"colour":"red"}`,
			status: http.StatusBadRequest, code: "bad_request"},
		{name: "malformed body", method: http.MethodPost, path: "/api/v1/services", body: `{`,
			status: http.StatusBadRequest, code: "bad_request"},
		{name: "unknown language", method: http.MethodGet, path: base + "?lang=de",
			status: http.StatusUnprocessableEntity, code: "unknown_code"},
		{name: "unknown type", method: http.MethodPost, path: "/api/v1/services", body: `{"type":"Nope","name":"Nimi"}`,
			status: http.StatusUnprocessableEntity, code: "unknown_code"},
		{name: "id mismatch", method: http.MethodPut, path: base, body: fmt.Sprintf(`{"id":%q,"name":"Nimi"}`, uuid.New()),
			status: http.StatusUnprocessableEntity, code: "validation_error"},
		{name: "unknown bump", method: http.MethodPut, path: base + "?bump=huge", body: `{"name":"Nimi"}`,
			status: http.StatusUnprocessableEntity, code: "validation_error"},
		{name: "undeclared language", method: http.MethodPost, path: base + "/languages/sv/remove",
			status: http.StatusUnprocessableEntity, code: "unsupported_language"},
		{name: "other kind", method: http.MethodPut, path: "/api/v1/organizations/" + saved.ID.String(),
			body: `{"type":"Municipality","name":"Kunta"}`, status: http.StatusUnprocessableEntity, code: "kind_mismatch"},
		{name: "other kind read", method: http.MethodGet, path: "/api/v1/channels/" + saved.ID.String(),
			status: http.StatusNotFound, code: "not_found"},
		{name: "unknown root", method: http.MethodGet, path: "/api/v1/services/" + uuid.NewString(),
			headers: []string{"Accept-Language", "fi"}, status: http.StatusNotFound, code: "not_found", message: "Ei löytynyt"},
		{name: "unknown root english", method: http.MethodGet, path: "/api/v1/services/" + uuid.NewString(),
			headers: []string{"Accept-Language", "en-GB"}, status: http.StatusNotFound, code: "not_found", message: "Not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, tt.body, tt.headers...)
			assertStatusCode(t, w, tt.status)
			resp := assertErrorResponse(t, w, tt.code)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Error.Message)
			}
		})
	}

	// The entity is untouched by the failed requests.
	v, err := regs.Services.History(t.Context(), saved.ID)
	require.NoError(t, err)
	assert.Len(t, v, 1)
}

func TestWriteServiceError(t *testing.T) {
	langs, _ := testutil.Lookups(t)
	h := NewHandler(nil, langs, version.Info{}, testutil.TestLoggerSilent())
	fi, _ := langs.ID("fi")

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		details map[string]string
	}{
		{"conflict", &uow.VersionConflictError{RootID: uuid.New()}, http.StatusConflict, "version_conflict", nil},
		{"wrapped not found", fmt.Errorf("loading: %w", uow.ErrNotFound), http.StatusNotFound, "not_found", nil},
		{"transition", fmt.Errorf("publishing: %w", &publishing.InvalidTransitionError{LanguageID: fi, To: model.StatusPublished}),
			http.StatusUnprocessableEntity, "invalid_transition", map[string]string{"language": "fi"}},
		{"validation", &translate.ValidationError{Field: "name", Reason: "required"},
			http.StatusUnprocessableEntity, "validation_error", map[string]string{"name": "required"}},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.writeServiceError(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assertStatusCode(t, w, tt.status)
			resp := assertErrorResponse(t, w, tt.code)
			assert.Equal(t, tt.details, resp.Error.Details)
			assert.NotContains(t, resp.Error.Message, "disk on fire")
		})
	}
}
