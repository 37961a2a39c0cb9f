// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntityKind names an entity family sharing one root table.
type EntityKind string

// Entity kinds
const (
	KindService            EntityKind = "service"
	KindOrganization       EntityKind = "organization"
	KindChannel            EntityKind = "channel"
	KindGeneralDescription EntityKind = "general_description"
)

// Valid returns true if k is a known entity kind.
func (k EntityKind) Valid() bool {
	switch k {
	case KindService, KindOrganization, KindChannel, KindGeneralDescription:
		return true
	}
	return false
}

// Root is the stable identity shared by all versions of one entity.
type Root struct {
	ID        uuid.UUID  `json:"id"`
	Kind      EntityKind `json:"kind"`
	CreatedAt time.Time  `json:"created_at"`
}

// Versioning is the immutable record of a revision's place in history.
type Versioning struct {
	ID                uuid.UUID     `json:"id"`
	UnificRootID      uuid.UUID     `json:"unific_root_id"`
	VersionMajor      int           `json:"version_major"`
	VersionMinor      int           `json:"version_minor"`
	PreviousVersionID uuid.NullUUID `json:"previous_version_id"`
	CreatedAt         time.Time     `json:"created_at"`
}

// Label returns the version as "major.minor".
func (v Versioning) Label() string {
	return fmt.Sprintf("%d.%d", v.VersionMajor, v.VersionMinor)
}

// Versioned is the header embedded in every versioned entity.
type Versioned struct {
	ID           uuid.UUID     `json:"id"`
	UnificRootID uuid.UUID     `json:"unific_root_id"`
	VersioningID uuid.NullUUID `json:"versioning_id"`
	CreatedAt    time.Time     `json:"created_at"`
	ModifiedAt   time.Time     `json:"modified_at"`
}

// Header returns the versioned header itself.
func (v *Versioned) Header() *Versioned {
	return v
}

// LanguageAvailability is the publishing state of one language of one versioned entity.
type LanguageAvailability struct {
	VersionedID        uuid.UUID        `json:"versioned_id"`
	LanguageID         uuid.UUID        `json:"language_id"`
	Kind               EntityKind       `json:"kind"`
	Status             PublishingStatus `json:"status"`
	CreatedAt          time.Time        `json:"created_at"`
	ModifiedAt         time.Time        `json:"modified_at"`
	PublishedAt        *time.Time       `json:"published_at,omitempty"`
	ScheduledPublishAt *time.Time       `json:"scheduled_publish_at,omitempty"`
}

// IsPublished returns true if any language row is published.
func IsPublished(rows []LanguageAvailability) bool {
	for _, row := range rows {
		if row.Status == StatusPublished {
			return true
		}
	}
	return false
}

// IsClosed returns true if any language row closes the version for in-place edits.
func IsClosed(rows []LanguageAvailability) bool {
	for _, row := range rows {
		if row.Status.IsClosed() {
			return true
		}
	}
	return false
}

// AvailableLanguages returns the languages whose rows can be shown, in row order.
func AvailableLanguages(rows []LanguageAvailability) []uuid.UUID {
	langs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if row.Status.IsAvailable() {
			langs = append(langs, row.LanguageID)
		}
	}
	return langs
}
