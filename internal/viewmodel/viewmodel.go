// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package viewmodel holds the API-facing shapes of registry entities.
//
// Read models carry one value per localized field, already resolved for the
// request language. Input models carry the values of the active language;
// a nil pointer means "leave unchanged" and a nil slice "leave the list alone".
package viewmodel

import (
	"time"

	"github.com/google/uuid"
)

// Meta is the version and language information of a read model.
type Meta struct {
	ID         uuid.UUID `json:"id"`         // root id
	VersionID  uuid.UUID `json:"version_id"` // versioned entity id
	Version    string    `json:"version,omitempty"`
	Status     string    `json:"status,omitempty"`
	Language   string    `json:"language"`
	Languages  []string  `json:"languages,omitempty"` // available languages
	Fallback   bool      `json:"fallback"`            // name is not in the requested language
	ModifiedAt time.Time `json:"modified_at"`
}

// DescriptionFields is the description block shared by all read models.
type DescriptionFields struct {
	Name           string `json:"name"`
	AlternateName  string `json:"alternate_name,omitempty"`
	Summary        string `json:"summary,omitempty"`
	Description    string `json:"description,omitempty"`
	Background     string `json:"background,omitempty"`      // markdown source
	BackgroundHTML string `json:"background_html,omitempty"` // rendered
}

// DescriptionInput is the description block shared by all input models.
type DescriptionInput struct {
	Name          *string `json:"name,omitempty"`
	AlternateName *string `json:"alternate_name,omitempty"`
	Summary       *string `json:"summary,omitempty"`
	Description   *string `json:"description,omitempty"`
	Background    *string `json:"background,omitempty"`
}

// InputHeader identifies what an input model writes to.
type InputHeader struct {
	ID        uuid.UUID `json:"id"`                   // root id; uuid.Nil creates a new root
	VersionID uuid.UUID `json:"version_id,omitempty"` // version the client edited
	Language  string    `json:"language,omitempty"`   // active language code
}

// Phone is a phone number in a read model.
type Phone struct {
	ID                    uuid.UUID `json:"id"`
	Number                string    `json:"number"`
	PrefixNumber          string    `json:"prefix_number,omitempty"`
	ChargeType            string    `json:"charge_type,omitempty"`
	AdditionalInformation string    `json:"additional_information,omitempty"`
	Language              string    `json:"language"`
}

// PhoneInput is a phone number in an input model, stored in the active language.
type PhoneInput struct {
	ID                    uuid.UUID `json:"id,omitempty"`
	Number                string    `json:"number"`
	PrefixNumber          string    `json:"prefix_number,omitempty"`
	ChargeType            string    `json:"charge_type,omitempty"`
	AdditionalInformation string    `json:"additional_information,omitempty"`
}

// ServiceHour is an opening-hours entry, used by read and input models.
type ServiceHour struct {
	ID        uuid.UUID  `json:"id,omitempty"`
	Weekday   int        `json:"weekday"`
	Opens     string     `json:"opens,omitempty"`
	Closes    string     `json:"closes,omitempty"`
	IsClosed  bool       `json:"is_closed,omitempty"`
	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`
}

// VersionInfo is one entry of an entity's version history, newest first.
type VersionInfo struct {
	VersionID    uuid.UUID         `json:"version_id"` // versioned entity id
	VersioningID uuid.UUID         `json:"versioning_id"`
	Version      string            `json:"version"`
	Status       string            `json:"status"`
	Languages    map[string]string `json:"languages"` // language code -> status
	CreatedAt    time.Time         `json:"created_at"`
	ModifiedAt   time.Time         `json:"modified_at"`
}

// Saved is the result of a save.
type Saved struct {
	ID        uuid.UUID `json:"id"`         // root id
	VersionID uuid.UUID `json:"version_id"` // versioned entity id
	Version   string    `json:"version"`
	Created   bool      `json:"created"`  // a new root was created
	InPlace   bool      `json:"in_place"` // the head version was edited
}
