// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware of the registry API.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/servreg-go/internal/cache"
	"github.com/olegiv/servreg-go/internal/i18n"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for language data.
const (
	ContextKeyLanguageCode ContextKey = "language_code"
	ContextKeyMessageLang  ContextKey = "message_language"
)

// Language creates middleware that picks the content language of a request.
// Priority order:
// 1. Query parameter ?lang=XX, passed on as is so that an unknown code
// fails the request instead of silently changing language
// 2. Accept-Language header, matched onto the configured languages
// 3. Default language
//
// API messages are translated to the closest supported message language.
func Language(langs *cache.LanguageCache, logger *slog.Logger) func(http.Handler) http.Handler {
	all := langs.All()
	codes := make([]string, len(all))
	for i, l := range all {
		codes[i] = l.Code
	}
	defaultCode := langs.Default().Code

	matcher, err := i18n.NewMatcher(codes, defaultCode)
	if err != nil {
		// Only reachable with a language table the cache itself rejects.
		logger.Error("language matcher disabled", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acceptLang := r.Header.Get("Accept-Language")

			code := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lang")))
			switch {
			case code != "":
			case matcher != nil:
				code = matcher.Match(acceptLang)
			default:
				code = defaultCode
			}

			msgLang := acceptLang
			if msgLang == "" {
				msgLang = code
			}

			ctx := context.WithValue(r.Context(), ContextKeyLanguageCode, code)
			ctx = context.WithValue(ctx, ContextKeyMessageLang, i18n.MatchLanguage(msgLang))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LanguageCode returns the content language code of the request, or "" when
// the Language middleware did not run.
func LanguageCode(r *http.Request) string {
	code, _ := r.Context().Value(ContextKeyLanguageCode).(string)
	return code
}

// MessageLanguage returns the language API messages are written in.
func MessageLanguage(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyMessageLang).(string); ok {
		return lang
	}
	return "en"
}
