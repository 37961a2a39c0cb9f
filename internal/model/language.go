// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "github.com/google/uuid"

// Language is a content language of the registry.
type Language struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`        // ISO 639-1: fi, sv, en
	Name       string    `json:"name"`        // Finnish, Swedish, English
	NativeName string    `json:"native_name"` // suomi, svenska, English
	IsDefault  bool      `json:"is_default"`  // only one can be default
	Position   int       `json:"position"`    // default fallback order
}

// Type groups of the type-code table.
const (
	TypeGroupName            = "name_type"
	TypeGroupDescription     = "description_type"
	TypeGroupService         = "service_type"
	TypeGroupOrganization    = "organization_type"
	TypeGroupChannel         = "channel_type"
	TypeGroupServiceHour     = "service_hour_type"
	TypeGroupPhoneChargeType = "phone_charge_type"
	TypeGroupGeneralDescType = "general_description_type"
)

// Well-known type codes.
const (
	NameTypeName          = "Name"
	NameTypeAlternateName = "AlternateName"

	DescriptionTypeSummary     = "ShortDescription"
	DescriptionTypeDescription = "Description"
	DescriptionTypeBackground  = "BackgroundDescription"

	ServiceHourStandard  = "Standard"
	ServiceHourException = "Exception"
	ServiceHourSpecial   = "Special"
)

// TypeCode is one row of the type-code table.
type TypeCode struct {
	ID       uuid.UUID `json:"id"`
	Group    string    `json:"group"`
	Code     string    `json:"code"`
	Position int       `json:"position"`
}
