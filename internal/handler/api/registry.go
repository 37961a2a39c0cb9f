// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/i18n"
	"github.com/olegiv/servreg-go/internal/middleware"
	"github.com/olegiv/servreg-go/internal/service"
	"github.com/olegiv/servreg-go/internal/translate"
	"github.com/olegiv/servreg-go/internal/versioning"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// registry is the part of a typed registry the API uses.
type registry[V, I any] interface {
	Get(ctx context.Context, rootID uuid.UUID, opts service.GetOptions) (V, error)
	Save(ctx context.Context, in I, opts service.SaveOptions) (viewmodel.Saved, error)
	Publish(ctx context.Context, rootID uuid.UUID, opts service.PublishOptions) (viewmodel.VersionInfo, error)
	RemoveLanguage(ctx context.Context, rootID uuid.UUID, code string) error
	Delete(ctx context.Context, rootID uuid.UUID) error
	History(ctx context.Context, rootID uuid.UUID) ([]viewmodel.VersionInfo, error)
}

// kindHandler serves the routes of one entity kind.
type kindHandler[V, I any] struct {
	*Handler
	reg    registry[V, I]
	header func(*I) *viewmodel.InputHeader
}

// PublishRequest represents the request body for publishing.
type PublishRequest struct {
	Languages []string   `json:"languages,omitempty"` // empty publishes every declared language
	At        *time.Time `json:"at,omitempty"`        // a future time schedules instead
}

// Register adds the API routes to r, which is expected to be mounted at
// /api/v1.
func (h *Handler) Register(r chi.Router) {
	r.Get("/status", h.Status)
	r.Get("/languages", h.Languages)

	mountKind[viewmodel.Service, viewmodel.ServiceInput](r, "/services", h, h.regs.Services,
		func(in *viewmodel.ServiceInput) *viewmodel.InputHeader { return &in.InputHeader })
	mountKind[viewmodel.Organization, viewmodel.OrganizationInput](r, "/organizations", h, h.regs.Organizations,
		func(in *viewmodel.OrganizationInput) *viewmodel.InputHeader { return &in.InputHeader })
	mountKind[viewmodel.Channel, viewmodel.ChannelInput](r, "/channels", h, h.regs.Channels,
		func(in *viewmodel.ChannelInput) *viewmodel.InputHeader { return &in.InputHeader })
	mountKind[viewmodel.GeneralDescription, viewmodel.GeneralDescriptionInput](r, "/general-descriptions", h, h.regs.GeneralDescriptions,
		func(in *viewmodel.GeneralDescriptionInput) *viewmodel.InputHeader { return &in.InputHeader })
}

func mountKind[V, I any](r chi.Router, base string, h *Handler, reg registry[V, I], header func(*I) *viewmodel.InputHeader) {
	k := &kindHandler[V, I]{Handler: h, reg: reg, header: header}
	r.Route(base, func(r chi.Router) {
		r.Post("/", k.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", k.get)
			r.Put("/", k.update)
			r.Delete("/", k.remove)
			r.Get("/history", k.history)
			r.Post("/publish", k.publish)
			r.Post("/languages/{code}/remove", k.removeLanguage)
		})
	})
}

// rootID parses the {id} URL parameter, writing a 400 response when it is
// not a uuid.
func (k *kindHandler[V, I]) rootID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteBadRequest(w, i18n.T(middleware.MessageLanguage(r), "error.bad_request", "id"),
			map[string]string{"id": "must be a uuid"})
		return uuid.Nil, false
	}
	return id, true
}

// decode reads a JSON body into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	WriteBadRequest(w, i18n.T(middleware.MessageLanguage(r), "error.bad_request", "body"),
		map[string]string{"body": err.Error()})
	return false
}

// saveOptions reads the ?lang and ?bump query parameters of a save.
func saveOptions(r *http.Request) (service.SaveOptions, error) {
	opts := service.SaveOptions{Language: strings.TrimSpace(r.URL.Query().Get("lang"))}
	switch bump := r.URL.Query().Get("bump"); bump {
	case "", "minor":
		opts.Bump = versioning.Minor
	case "major":
		opts.Bump = versioning.Major
	default:
		return opts, &translate.ValidationError{Field: "bump", Reason: fmt.Sprintf("unknown bump %q", bump)}
	}
	return opts, nil
}

func (k *kindHandler[V, I]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := k.rootID(w, r)
	if !ok {
		return
	}
	v, err := k.reg.Get(r.Context(), id, service.GetOptions{
		Language:  middleware.LanguageCode(r),
		Published: r.URL.Query().Get("published") == "true",
	})
	if err != nil {
		k.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, v, nil)
}

func (k *kindHandler[V, I]) create(w http.ResponseWriter, r *http.Request) {
	var in I
	if !decode(w, r, &in, false) {
		return
	}
	k.save(w, r, in)
}

func (k *kindHandler[V, I]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := k.rootID(w, r)
	if !ok {
		return
	}
	var in I
	if !decode(w, r, &in, false) {
		return
	}
	h := k.header(&in)
	switch h.ID {
	case uuid.Nil:
		h.ID = id
	case id:
	default:
		k.writeServiceError(w, r, &translate.ValidationError{Field: "id", Reason: "does not match the URL"})
		return
	}
	k.save(w, r, in)
}

func (k *kindHandler[V, I]) save(w http.ResponseWriter, r *http.Request, in I) {
	opts, err := saveOptions(r)
	if err != nil {
		k.writeServiceError(w, r, err)
		return
	}
	saved, err := k.reg.Save(r.Context(), in, opts)
	if err != nil {
		k.writeServiceError(w, r, err)
		return
	}
	if saved.Created {
		if r.Method == http.MethodPost {
			w.Header().Set("Location", fmt.Sprintf("%s/%s", strings.TrimSuffix(r.URL.Path, "/"), saved.ID))
		}
		WriteCreated(w, saved)
		return
	}
	WriteSuccess(w, saved, nil)
}

func (k *kindHandler[V, I]) publish(w http.ResponseWriter, r *http.Request) {
	id, ok := k.rootID(w, r)
	if !ok {
		return
	}
	var req PublishRequest
	if !decode(w, r, &req, true) {
		return
	}
	info, err := k.reg.Publish(r.Context(), id, service.PublishOptions{Languages: req.Languages, At: req.At})
	if err != nil {
		k.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, info, nil)
}

func (k *kindHandler[V, I]) removeLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := k.rootID(w, r)
	if !ok {
		return
	}
	if err := k.reg.RemoveLanguage(r.Context(), id, chi.URLParam(r, "code")); err != nil {
		k.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (k *kindHandler[V, I]) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := k.rootID(w, r)
	if !ok {
		return
	}
	if err := k.reg.Delete(r.Context(), id); err != nil {
		k.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (k *kindHandler[V, I]) history(w http.ResponseWriter, r *http.Request) {
	id, ok := k.rootID(w, r)
	if !ok {
		return
	}
	versions, err := k.reg.History(r.Context(), id)
	if err != nil {
		k.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, versions, &Meta{Total: int64(len(versions))})
}
