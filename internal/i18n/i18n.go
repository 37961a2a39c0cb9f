// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n resolves per-language values with a fallback chain, matches
// request languages onto the configured language codes, and translates the
// API's own messages.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Translation string `json:"translation"`
}

// MessageFile represents the structure of a messages JSON file.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// Catalog holds the API message translations.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> key -> translation
	matcher      *Matcher
	defaultLang  string
	logger       *slog.Logger
}

var catalog *Catalog

// SupportedLanguages lists the languages API messages are translated to.
var SupportedLanguages = []string{"en", "fi", "sv"}

// Init loads the embedded message catalog.
func Init(logger *slog.Logger) error {
	c := &Catalog{
		translations: make(map[string]map[string]string),
		defaultLang:  "en",
		logger:       logger,
	}

	m, err := NewMatcher(SupportedLanguages, c.defaultLang)
	if err != nil {
		return err
	}
	c.matcher = m

	for _, lang := range SupportedLanguages {
		if err := c.loadLanguage(lang); err != nil {
			return fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	catalog = c
	if logger != nil {
		logger.Info("i18n initialized", "languages", SupportedLanguages)
	}
	return nil
}

func (c *Catalog) loadLanguage(lang string) error {
	path := fmt.Sprintf("locales/%s/messages.json", lang)
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var msgFile MessageFile
	if err := json.Unmarshal(data, &msgFile); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.translations[lang] = make(map[string]string, len(msgFile.Messages))
	for _, msg := range msgFile.Messages {
		c.translations[lang][msg.ID] = msg.Translation
	}
	return nil
}

// T translates a message key. Unknown languages and keys missing in a
// language fall back to English; a key missing everywhere is returned as is.
func T(lang, key string, args ...any) string {
	if catalog == nil {
		return key
	}

	catalog.mu.RLock()
	translation, ok := catalog.translations[lang][key]
	if !ok {
		translation, ok = catalog.translations[catalog.defaultLang][key]
		if ok && catalog.logger != nil && lang != catalog.defaultLang {
			catalog.logger.Debug("missing translation, using default", "key", key, "lang", lang)
		}
	}
	catalog.mu.RUnlock()

	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(translation, args...)
	}
	return translation
}

// MatchLanguage returns the supported message language closest to an
// Accept-Language header or language code.
func MatchLanguage(acceptLang string) string {
	if catalog == nil {
		return "en"
	}
	return catalog.matcher.Match(acceptLang)
}

// TranslationCount returns the number of translations loaded for a language.
func TranslationCount(lang string) int {
	if catalog == nil {
		return 0
	}
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	return len(catalog.translations[lang])
}

// Matcher maps Accept-Language values onto a fixed set of language codes.
type Matcher struct {
	matcher     language.Matcher
	codes       []string
	defaultCode string
}

// NewMatcher builds a matcher over codes. defaultCode is returned when
// nothing matches and must be one of codes.
func NewMatcher(codes []string, defaultCode string) (*Matcher, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("no languages to match")
	}

	// The first tag is the matcher's own fallback, so put the default first.
	ordered := make([]string, 0, len(codes))
	found := false
	for _, c := range codes {
		if c == defaultCode {
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("default language %q is not in %v", defaultCode, codes)
	}
	ordered = append(ordered, defaultCode)
	for _, c := range codes {
		if c != defaultCode {
			ordered = append(ordered, c)
		}
	}

	tags := make([]language.Tag, len(ordered))
	for i, c := range ordered {
		tag, err := language.Parse(c)
		if err != nil {
			return nil, fmt.Errorf("parsing language %q: %w", c, err)
		}
		tags[i] = tag
	}

	return &Matcher{
		matcher:     language.NewMatcher(tags),
		codes:       ordered,
		defaultCode: defaultCode,
	}, nil
}

// Match returns the configured code closest to an Accept-Language header
// or a bare language code, or the default code.
func (m *Matcher) Match(acceptLang string) string {
	if acceptLang == "" {
		return m.defaultCode
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return m.defaultCode
		}
		tags = []language.Tag{tag}
	}

	_, idx, conf := m.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(m.codes) {
		return m.defaultCode
	}
	return m.codes[idx]
}

// Supports reports whether code is one of the matcher's codes.
func (m *Matcher) Supports(code string) bool {
	for _, c := range m.codes {
		if c == code {
			return true
		}
	}
	return false
}
