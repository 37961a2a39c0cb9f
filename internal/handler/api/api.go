// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API of the service registry.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/cache"
	"github.com/olegiv/servreg-go/internal/i18n"
	"github.com/olegiv/servreg-go/internal/middleware"
	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/publishing"
	"github.com/olegiv/servreg-go/internal/service"
	"github.com/olegiv/servreg-go/internal/translate"
	"github.com/olegiv/servreg-go/internal/uow"
	"github.com/olegiv/servreg-go/internal/version"
	"github.com/olegiv/servreg-go/internal/versioning"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	regs   *service.Registries
	langs  *cache.LanguageCache
	build  version.Info
	logger *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(regs *service.Registries, langs *cache.LanguageCache, build version.Info, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		regs:   regs,
		langs:  langs,
		build:  build,
		logger: logger,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains list metadata.
type Meta struct {
	Total int64 `json:"total,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	resp := Response{
		Data: data,
		Meta: meta,
	}
	WriteJSON(w, http.StatusOK, resp)
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	resp := Response{
		Data: data,
	}
	WriteJSON(w, http.StatusCreated, resp)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	WriteJSON(w, statusCode, resp)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, message string, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", message, fieldErrors)
}

// writeServiceError maps a registry error onto an API error in the
// request's message language. Unexpected errors are logged and reported
// with the request id only.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	lang := middleware.MessageLanguage(r)

	var (
		validation  *translate.ValidationError
		unknownCode *translate.UnknownCodeError
		unsupported *publishing.UnsupportedLanguageError
		transition  *publishing.InvalidTransitionError
	)
	switch {
	case errors.As(err, &validation):
		WriteValidationError(w, i18n.T(lang, "error.validation"), map[string]string{validation.Field: validation.Reason})
	case errors.As(err, &unknownCode):
		WriteError(w, http.StatusUnprocessableEntity, "unknown_code",
			i18n.T(lang, "error.unknown_code", unknownCode.Group, unknownCode.Code), nil)
	case errors.As(err, &unsupported):
		WriteError(w, http.StatusUnprocessableEntity, "unsupported_language",
			i18n.T(lang, "error.unsupported_language", h.languageCode(unsupported.LanguageID)), nil)
	case errors.As(err, &transition):
		from := string(transition.From)
		if from == "" {
			from = "none"
		}
		WriteError(w, http.StatusUnprocessableEntity, "invalid_transition",
			i18n.T(lang, "error.invalid_transition", from, transition.To),
			map[string]string{"language": h.languageCode(transition.LanguageID)})
	case errors.Is(err, versioning.ErrKindMismatch):
		WriteError(w, http.StatusUnprocessableEntity, "kind_mismatch", err.Error(), nil)
	case errors.Is(err, uow.ErrVersionConflict):
		WriteError(w, http.StatusConflict, "version_conflict", i18n.T(lang, "error.version_conflict"), nil)
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, i18n.T(lang, "error.not_found"))
	default:
		reqID := chimw.GetReqID(r.Context())
		h.logger.Error("api request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", reqID, "error", err)
		WriteInternalError(w, i18n.T(lang, "error.internal", reqID))
	}
}

// languageCode returns the code of a language id, or the id itself.
func (h *Handler) languageCode(id uuid.UUID) string {
	if code, ok := h.langs.Code(id); ok {
		return code
	}
	return id.String()
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Build     string `json:"build,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{
		Status:    "ok",
		Version:   "v1",
		Build:     h.build.Version,
		GitCommit: h.build.GitCommit,
	}, nil)
}

// LanguageResponse is one configured content language.
type LanguageResponse struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Default    bool   `json:"default"`
}

// Languages handles GET /api/v1/languages, listing languages in fallback order.
func (h *Handler) Languages(w http.ResponseWriter, _ *http.Request) {
	byID := make(map[uuid.UUID]model.Language)
	for _, l := range h.langs.All() {
		byID[l.ID] = l
	}
	defaultID := h.langs.Default().ID

	out := make([]LanguageResponse, 0, len(byID))
	for _, id := range h.langs.FallbackOrder() {
		l := byID[id]
		out = append(out, LanguageResponse{
			Code:       l.Code,
			Name:       l.Name,
			NativeName: l.NativeName,
			Default:    l.ID == defaultID,
		})
	}
	WriteSuccess(w, out, &Meta{Total: int64(len(out))})
}
