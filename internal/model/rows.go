// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// LocalizedText is one per-language text row (a name or a description) of a versioned entity.
// Names and descriptions of one entity kind share a table and are told apart by TypeID.
type LocalizedText struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	LanguageID uuid.UUID `json:"language_id"`
	TypeID     uuid.UUID `json:"type_id"`
	Value      string    `json:"value"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Phone is a per-language phone number of an organization or channel.
type Phone struct {
	ID                    uuid.UUID     `json:"id"`
	OwnerID               uuid.UUID     `json:"owner_id"`
	LanguageID            uuid.UUID     `json:"language_id"`
	Number                string        `json:"number"`
	PrefixNumber          string        `json:"prefix_number"`
	ChargeTypeID          uuid.NullUUID `json:"charge_type_id"`
	AdditionalInformation string        `json:"additional_information"`
	OrderNumber           int           `json:"order_number"`
	ModifiedAt            time.Time     `json:"modified_at"`
}

// ServiceHour is one opening-hours row of a channel. Standard, exception and special
// hours share a table and are told apart by HourTypeID.
type ServiceHour struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	HourTypeID  uuid.UUID  `json:"hour_type_id"`
	Weekday     int        `json:"weekday"` // 0 = Sunday
	Opens       string     `json:"opens"`   // HH:MM
	Closes      string     `json:"closes"`  // HH:MM
	IsClosed    bool       `json:"is_closed"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidTo     *time.Time `json:"valid_to,omitempty"`
	OrderNumber int        `json:"order_number"`
	ModifiedAt  time.Time  `json:"modified_at"`
}

// TextLanguages returns the distinct languages of texts in first-seen order.
func TextLanguages(texts []LocalizedText) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(texts))
	langs := make([]uuid.UUID, 0, len(texts))
	for _, t := range texts {
		if !seen[t.LanguageID] {
			seen[t.LanguageID] = true
			langs = append(langs, t.LanguageID)
		}
	}
	return langs
}

// cloneTexts copies texts under a new owner with fresh ids.
func cloneTexts(texts []LocalizedText, owner uuid.UUID) []LocalizedText {
	out := make([]LocalizedText, len(texts))
	for i, t := range texts {
		t.ID = uuid.New()
		t.OwnerID = owner
		out[i] = t
	}
	return out
}

// clonePhones copies phones under a new owner with fresh ids.
func clonePhones(phones []Phone, owner uuid.UUID) []Phone {
	out := make([]Phone, len(phones))
	for i, p := range phones {
		p.ID = uuid.New()
		p.OwnerID = owner
		out[i] = p
	}
	return out
}

// cloneHours copies hours under a new owner with fresh ids.
func cloneHours(hours []ServiceHour, owner uuid.UUID) []ServiceHour {
	out := make([]ServiceHour, len(hours))
	for i, h := range hours {
		h.ID = uuid.New()
		h.OwnerID = owner
		out[i] = h
	}
	return out
}
