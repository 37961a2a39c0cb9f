// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package viewmodel

import "github.com/google/uuid"

// Service is the read model of a service.
type Service struct {
	Meta
	DescriptionFields
	Type                 string                     `json:"type"`
	OrganizationID       *uuid.UUID                 `json:"organization_id,omitempty"`
	GeneralDescriptionID *uuid.UUID                 `json:"general_description_id,omitempty"`
	GeneralDescription   *GeneralDescriptionSummary `json:"general_description,omitempty"`
}

// ServiceInput is the input model of a service.
type ServiceInput struct {
	InputHeader
	DescriptionInput
	Type                 string     `json:"type"`
	OrganizationID       *uuid.UUID `json:"organization_id,omitempty"`
	GeneralDescriptionID *uuid.UUID `json:"general_description_id,omitempty"`
}

// Organization is the read model of an organization.
type Organization struct {
	Meta
	DescriptionFields
	Type         string     `json:"type"`
	BusinessCode string     `json:"business_code,omitempty"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	Phones       []Phone    `json:"phones"`
}

// OrganizationInput is the input model of an organization.
type OrganizationInput struct {
	InputHeader
	DescriptionInput
	Type         string       `json:"type"`
	BusinessCode *string      `json:"business_code,omitempty"`
	ParentID     *uuid.UUID   `json:"parent_id,omitempty"`
	Phones       []PhoneInput `json:"phones,omitempty"`
	// MergePhones keeps phones of the active language that are not in Phones.
	MergePhones bool `json:"merge_phones,omitempty"`
}

// Channel is the read model of a service channel.
type Channel struct {
	Meta
	DescriptionFields
	Type           string        `json:"type"`
	OrganizationID uuid.UUID     `json:"organization_id"`
	Phones         []Phone       `json:"phones"`
	StandardHours  []ServiceHour `json:"standard_hours"`
	ExceptionHours []ServiceHour `json:"exception_hours"`
	SpecialHours   []ServiceHour `json:"special_hours"`
}

// ChannelInput is the input model of a service channel.
type ChannelInput struct {
	InputHeader
	DescriptionInput
	Type           string        `json:"type"`
	OrganizationID *uuid.UUID    `json:"organization_id,omitempty"`
	Phones         []PhoneInput  `json:"phones,omitempty"`
	StandardHours  []ServiceHour `json:"standard_hours,omitempty"`
	ExceptionHours []ServiceHour `json:"exception_hours,omitempty"`
	SpecialHours   []ServiceHour `json:"special_hours,omitempty"`
}

// GeneralDescription is the read model of a general description.
type GeneralDescription struct {
	Meta
	DescriptionFields
	Type string `json:"type"`
}

// GeneralDescriptionInput is the input model of a general description.
type GeneralDescriptionInput struct {
	InputHeader
	DescriptionInput
	Type string `json:"type"`
}

// GeneralDescriptionSummary is a general description embedded in a service.
type GeneralDescriptionSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
}
