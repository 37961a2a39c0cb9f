// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package i18n

import (
	"testing"
)

func TestInit(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, lang := range SupportedLanguages {
		if TranslationCount(lang) == 0 {
			t.Errorf("expected %s translations to be loaded", lang)
		}
	}
}

func TestT(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	tests := []struct {
		lang     string
		key      string
		args     []any
		expected string
	}{
		{"en", "error.not_found", nil, "Not found"},
		{"fi", "error.not_found", nil, "Ei löytynyt"},
		{"sv", "error.not_found", nil, "Hittades inte"},
		{"fi", "error.invalid_transition", []any{"draft", "old_published"}, "Julkaisutilaa ei voi muuttaa tilasta draft tilaan old_published"},
		// Swedish has no entry, English is used
		{"sv", "error.rate_limited", nil, "Too many requests, please slow down"},
		// Unknown language falls back to English
		{"de", "error.validation", nil, "Invalid request"},
		// Unknown key is returned as is
		{"en", "nonexistent.key", nil, "nonexistent.key"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"_"+tt.key, func(t *testing.T) {
			result := T(tt.lang, tt.key, tt.args...)
			if result != tt.expected {
				t.Errorf("T(%q, %q, %v) = %q, want %q", tt.lang, tt.key, tt.args, result, tt.expected)
			}
		})
	}
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher([]string{"sv", "fi", "en"}, "fi")
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"", "fi"},
		{"sv", "sv"},
		{"en-GB", "en"},
		{"sv-FI,sv;q=0.9,en;q=0.8", "sv"},
		{"de-DE,de;q=0.9,en;q=0.5", "en"},
		{"ja", "fi"},
		{"!!!", "fi"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := m.Match(tt.input); got != tt.expected {
				t.Errorf("Match(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}

	if !m.Supports("en") || m.Supports("de") {
		t.Error("Supports mismatch")
	}
}

func TestNewMatcher_Errors(t *testing.T) {
	if _, err := NewMatcher(nil, "fi"); err == nil {
		t.Error("expected error for empty codes")
	}
	if _, err := NewMatcher([]string{"fi"}, "sv"); err == nil {
		t.Error("expected error for default outside codes")
	}
}

func TestMatchLanguage(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if got := MatchLanguage("fi-FI"); got != "fi" {
		t.Errorf("MatchLanguage(fi-FI) = %q", got)
	}
	if got := MatchLanguage("de"); got != "en" {
		t.Errorf("MatchLanguage(de) = %q", got)
	}
}
