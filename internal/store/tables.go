// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"github.com/olegiv/servreg-go/internal/model"
)

var languagesTable = &Table[model.Language]{
	Name:    "languages",
	Columns: []string{"id", "code", "name", "native_name", "is_default", "position"},
	Keys:    1,
	OrderBy: "position, code",
	Values: func(l model.Language) []any {
		return []any{l.ID, l.Code, l.Name, l.NativeName, l.IsDefault, l.Position}
	},
	Scan: func(s rowScanner) (model.Language, error) {
		var l model.Language
		err := s.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsDefault, &l.Position)
		return l, err
	},
}

var typesTable = &Table[model.TypeCode]{
	Name:    "types",
	Columns: []string{"id", "type_group", "code", "position"},
	Keys:    1,
	OrderBy: "type_group, position, code",
	Values: func(t model.TypeCode) []any {
		return []any{t.ID, t.Group, t.Code, t.Position}
	},
	Scan: func(s rowScanner) (model.TypeCode, error) {
		var t model.TypeCode
		err := s.Scan(&t.ID, &t.Group, &t.Code, &t.Position)
		return t, err
	},
}

var rootsTable = &Table[model.Root]{
	Name:    "roots",
	Columns: []string{"id", "kind", "created_at"},
	Keys:    1,
	OrderBy: "created_at, id",
	Values: func(r model.Root) []any {
		return []any{r.ID, r.Kind, r.CreatedAt}
	},
	Scan: func(s rowScanner) (model.Root, error) {
		var r model.Root
		err := s.Scan(&r.ID, &r.Kind, &r.CreatedAt)
		return r, err
	},
}

var versioningsTable = &Table[model.Versioning]{
	Name:    "versionings",
	Columns: []string{"id", "unific_root_id", "version_major", "version_minor", "previous_version_id", "created_at"},
	Keys:    1,
	OrderBy: "created_at, version_major, version_minor",
	Values: func(v model.Versioning) []any {
		return []any{v.ID, v.UnificRootID, v.VersionMajor, v.VersionMinor, v.PreviousVersionID, v.CreatedAt}
	},
	Scan: func(s rowScanner) (model.Versioning, error) {
		var v model.Versioning
		err := s.Scan(&v.ID, &v.UnificRootID, &v.VersionMajor, &v.VersionMinor, &v.PreviousVersionID, &v.CreatedAt)
		return v, err
	},
}

var availabilitiesTable = &Table[model.LanguageAvailability]{
	Name: "language_availabilities",
	Columns: []string{
		"versioned_id", "language_id", "kind", "status",
		"created_at", "modified_at", "published_at", "scheduled_publish_at",
	},
	Keys:    2,
	OrderBy: "versioned_id, created_at, language_id",
	Values: func(a model.LanguageAvailability) []any {
		return []any{
			a.VersionedID, a.LanguageID, a.Kind, a.Status,
			a.CreatedAt, a.ModifiedAt, a.PublishedAt, a.ScheduledPublishAt,
		}
	},
	Scan: func(s rowScanner) (model.LanguageAvailability, error) {
		var a model.LanguageAvailability
		err := s.Scan(&a.VersionedID, &a.LanguageID, &a.Kind, &a.Status,
			&a.CreatedAt, &a.ModifiedAt, &a.PublishedAt, &a.ScheduledPublishAt)
		return a, err
	},
}

var headerColumns = []string{"id", "unific_root_id", "versioning_id", "created_at", "modified_at"}

func headerValues(h model.Versioned) []any {
	return []any{h.ID, h.UnificRootID, h.VersioningID, h.CreatedAt, h.ModifiedAt}
}

func headerDest(h *model.Versioned) []any {
	return []any{&h.ID, &h.UnificRootID, &h.VersioningID, &h.CreatedAt, &h.ModifiedAt}
}

func withHeader(extra ...string) []string {
	return append(append([]string{}, headerColumns...), extra...)
}

var servicesTable = &Table[model.Service]{
	Name:    "services",
	Columns: withHeader("type_id", "organization_id", "general_description_id"),
	Keys:    1,
	OrderBy: "created_at, id",
	Values: func(v model.Service) []any {
		return append(headerValues(v.Versioned), v.TypeID, v.OrganizationID, v.GeneralDescriptionID)
	},
	Scan: func(s rowScanner) (model.Service, error) {
		var v model.Service
		err := s.Scan(append(headerDest(&v.Versioned), &v.TypeID, &v.OrganizationID, &v.GeneralDescriptionID)...)
		return v, err
	},
}

var organizationsTable = &Table[model.Organization]{
	Name:    "organizations",
	Columns: withHeader("type_id", "business_code", "parent_id"),
	Keys:    1,
	OrderBy: "created_at, id",
	Values: func(v model.Organization) []any {
		return append(headerValues(v.Versioned), v.TypeID, v.BusinessCode, v.ParentID)
	},
	Scan: func(s rowScanner) (model.Organization, error) {
		var v model.Organization
		err := s.Scan(append(headerDest(&v.Versioned), &v.TypeID, &v.BusinessCode, &v.ParentID)...)
		return v, err
	},
}

var channelsTable = &Table[model.Channel]{
	Name:    "channels",
	Columns: withHeader("type_id", "organization_id"),
	Keys:    1,
	OrderBy: "created_at, id",
	Values: func(v model.Channel) []any {
		return append(headerValues(v.Versioned), v.TypeID, v.OrganizationID)
	},
	Scan: func(s rowScanner) (model.Channel, error) {
		var v model.Channel
		err := s.Scan(append(headerDest(&v.Versioned), &v.TypeID, &v.OrganizationID)...)
		return v, err
	},
}

var generalDescriptionsTable = &Table[model.GeneralDescription]{
	Name:    "general_descriptions",
	Columns: withHeader("type_id"),
	Keys:    1,
	OrderBy: "created_at, id",
	Values: func(v model.GeneralDescription) []any {
		return append(headerValues(v.Versioned), v.TypeID)
	},
	Scan: func(s rowScanner) (model.GeneralDescription, error) {
		var v model.GeneralDescription
		err := s.Scan(append(headerDest(&v.Versioned), &v.TypeID)...)
		return v, err
	},
}

func textsTable(name string) *Table[model.LocalizedText] {
	return &Table[model.LocalizedText]{
		Name:    name,
		Columns: []string{"id", "owner_id", "language_id", "type_id", "value", "modified_at"},
		Keys:    1,
		OrderBy: "owner_id, rowid",
		Values: func(t model.LocalizedText) []any {
			return []any{t.ID, t.OwnerID, t.LanguageID, t.TypeID, t.Value, t.ModifiedAt}
		},
		Scan: func(s rowScanner) (model.LocalizedText, error) {
			var t model.LocalizedText
			err := s.Scan(&t.ID, &t.OwnerID, &t.LanguageID, &t.TypeID, &t.Value, &t.ModifiedAt)
			return t, err
		},
	}
}

func phonesTable(name string) *Table[model.Phone] {
	return &Table[model.Phone]{
		Name: name,
		Columns: []string{
			"id", "owner_id", "language_id", "number", "prefix_number",
			"charge_type_id", "additional_information", "order_number", "modified_at",
		},
		Keys:    1,
		OrderBy: "owner_id, order_number, rowid",
		Values: func(p model.Phone) []any {
			return []any{
				p.ID, p.OwnerID, p.LanguageID, p.Number, p.PrefixNumber,
				p.ChargeTypeID, p.AdditionalInformation, p.OrderNumber, p.ModifiedAt,
			}
		},
		Scan: func(s rowScanner) (model.Phone, error) {
			var p model.Phone
			err := s.Scan(&p.ID, &p.OwnerID, &p.LanguageID, &p.Number, &p.PrefixNumber,
				&p.ChargeTypeID, &p.AdditionalInformation, &p.OrderNumber, &p.ModifiedAt)
			return p, err
		},
	}
}

var channelHoursTable = &Table[model.ServiceHour]{
	Name: "channel_hours",
	Columns: []string{
		"id", "owner_id", "hour_type_id", "weekday", "opens", "closes",
		"is_closed", "valid_from", "valid_to", "order_number", "modified_at",
	},
	Keys:    1,
	OrderBy: "owner_id, order_number, rowid",
	Values: func(h model.ServiceHour) []any {
		return []any{
			h.ID, h.OwnerID, h.HourTypeID, h.Weekday, h.Opens, h.Closes,
			h.IsClosed, h.ValidFrom, h.ValidTo, h.OrderNumber, h.ModifiedAt,
		}
	},
	Scan: func(s rowScanner) (model.ServiceHour, error) {
		var h model.ServiceHour
		err := s.Scan(&h.ID, &h.OwnerID, &h.HourTypeID, &h.Weekday, &h.Opens, &h.Closes,
			&h.IsClosed, &h.ValidFrom, &h.ValidTo, &h.OrderNumber, &h.ModifiedAt)
		return h, err
	},
}

var (
	serviceTextsTable            = textsTable("service_texts")
	organizationTextsTable       = textsTable("organization_texts")
	channelTextsTable            = textsTable("channel_texts")
	generalDescriptionTextsTable = textsTable("general_description_texts")
	organizationPhonesTable      = phonesTable("organization_phones")
	channelPhonesTable           = phonesTable("channel_phones")
)
