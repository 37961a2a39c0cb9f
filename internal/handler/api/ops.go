// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/servreg-go/internal/i18n"
	"github.com/olegiv/servreg-go/internal/middleware"
	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/scheduler"
)

// Event list paging.
const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// EventLister lists the event log.
type EventLister interface {
	List(ctx context.Context, limit, offset int) ([]model.Event, int64, error)
}

// JobRunner lists and triggers background jobs.
type JobRunner interface {
	List() []scheduler.JobInfo
	TriggerNow(name string) error
}

// OpsHandler serves the event log and the background jobs.
type OpsHandler struct {
	events EventLister
	jobs   JobRunner
	logger *slog.Logger
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(events EventLister, jobs JobRunner, logger *slog.Logger) *OpsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpsHandler{events: events, jobs: jobs, logger: logger}
}

// Register mounts the operational routes.
func (h *OpsHandler) Register(r chi.Router) {
	r.Get("/events", h.ListEvents)
	r.Get("/jobs", h.ListJobs)
	r.Post("/jobs/{name}/run", h.RunJob)
}

// ListEvents handles GET /events?limit=&offset=.
func (h *OpsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	lang := middleware.MessageLanguage(r)

	limit, err := queryInt(r, "limit", defaultEventLimit)
	if err != nil || limit < 1 {
		WriteBadRequest(w, i18n.T(lang, "error.bad_request", "limit"), nil)
		return
	}
	limit = min(limit, maxEventLimit)
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		WriteBadRequest(w, i18n.T(lang, "error.bad_request", "offset"), nil)
		return
	}

	events, total, err := h.events.List(r.Context(), limit, offset)
	if err != nil {
		reqID := chimw.GetReqID(r.Context())
		h.logger.Error("listing events failed", "request_id", reqID, "error", err)
		WriteInternalError(w, i18n.T(lang, "error.internal", reqID))
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	WriteSuccess(w, events, &Meta{Total: total})
}

// ListJobs handles GET /jobs.
func (h *OpsHandler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	jobs := h.jobs.List()
	WriteSuccess(w, jobs, &Meta{Total: int64(len(jobs))})
}

// RunJob handles POST /jobs/{name}/run. The job runs synchronously.
func (h *OpsHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	lang := middleware.MessageLanguage(r)
	name := chi.URLParam(r, "name")

	err := h.jobs.TriggerNow(name)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, scheduler.ErrJobNotFound):
		WriteNotFound(w, i18n.T(lang, "error.not_found"))
	case errors.Is(err, scheduler.ErrJobRunning):
		WriteError(w, http.StatusConflict, "job_running", i18n.T(lang, "error.job_running", name), nil)
	default:
		WriteInternalError(w, i18n.T(lang, "error.job_failed", name))
	}
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
