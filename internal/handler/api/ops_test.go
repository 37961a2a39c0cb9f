// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/servreg-go/internal/i18n"
	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/scheduler"
	"github.com/olegiv/servreg-go/internal/service"
	"github.com/olegiv/servreg-go/internal/testutil"
)

func opsRouter(t *testing.T) (http.Handler, *service.EventService, *scheduler.Registry) {
	t.Helper()
	require.NoError(t, i18n.Init(nil))

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	logger := testutil.TestLoggerSilent()

	events := service.NewEventService(db, logger)
	c := cron.New()
	t.Cleanup(func() { c.Stop() })
	jobs := scheduler.NewRegistry(c, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", NewOpsHandler(events, jobs, logger).Register)
	return r, events, jobs
}

func TestListEvents(t *testing.T) {
	h, events, _ := opsRouter(t)
	ctx := context.Background()
	for i := range 5 {
		require.NoError(t, events.LogInfo(ctx, model.EventCategoryPublishing, fmt.Sprintf("event %d", i), nil))
	}

	w := do(t, h, http.MethodGet, "/api/v1/events?limit=2&offset=1", "")
	assertStatusCode(t, w, http.StatusOK)
	list, meta := unmarshalData[[]model.Event](t, w)
	require.Len(t, list, 2)
	require.NotNil(t, meta)
	assert.Equal(t, int64(5), meta.Total)
	assert.Equal(t, model.EventCategoryPublishing, list[0].Category)
}

func TestListEventsEmpty(t *testing.T) {
	h, _, _ := opsRouter(t)

	w := do(t, h, http.MethodGet, "/api/v1/events", "")
	assertStatusCode(t, w, http.StatusOK)
	list, meta := unmarshalData[[]model.Event](t, w)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.Equal(t, int64(0), meta.Total)
}

func TestListEventsBadPaging(t *testing.T) {
	h, _, _ := opsRouter(t)

	for _, q := range []string{"limit=0", "limit=abc", "offset=-1"} {
		w := do(t, h, http.MethodGet, "/api/v1/events?"+q, "")
		assertStatusCode(t, w, http.StatusBadRequest)
		assertErrorResponse(t, w, "bad_request")
	}
}

func TestJobs(t *testing.T) {
	h, _, jobs := opsRouter(t)

	runs := 0
	require.NoError(t, jobs.Register("ok", "always works", "@every 1h", func() error {
		runs++
		return nil
	}))
	require.NoError(t, jobs.Register("broken", "always fails", "@every 1h", func() error {
		return errors.New("boom")
	}))

	w := do(t, h, http.MethodGet, "/api/v1/jobs", "")
	assertStatusCode(t, w, http.StatusOK)
	list, meta := unmarshalData[[]scheduler.JobInfo](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, "broken", list[0].Name)

	w = do(t, h, http.MethodPost, "/api/v1/jobs/ok/run", "")
	assertStatusCode(t, w, http.StatusNoContent)
	assert.Equal(t, 1, runs)

	w = do(t, h, http.MethodPost, "/api/v1/jobs/broken/run", "")
	assertStatusCode(t, w, http.StatusInternalServerError)
	resp := assertErrorResponse(t, w, "internal_error")
	assert.Contains(t, resp.Error.Message, "broken")

	w = do(t, h, http.MethodPost, "/api/v1/jobs/missing/run", "")
	assertStatusCode(t, w, http.StatusNotFound)
	assertErrorResponse(t, w, "not_found")
}
