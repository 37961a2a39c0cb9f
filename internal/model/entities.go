// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "github.com/google/uuid"

// Service is one version of a public service.
type Service struct {
	Versioned
	TypeID               uuid.UUID       `json:"type_id"`
	OrganizationID       uuid.NullUUID   `json:"organization_id"`        // organization root
	GeneralDescriptionID uuid.NullUUID   `json:"general_description_id"` // general description root
	Texts                []LocalizedText `json:"texts"`

	// GeneralDescription is the published or latest version of the linked
	// general description, loaded for reads only.
	GeneralDescription *GeneralDescription `json:"-"`
}

// Kind returns KindService.
func (s *Service) Kind() EntityKind { return KindService }

// DeclaredLanguages returns the languages the service has texts in.
func (s *Service) DeclaredLanguages() []uuid.UUID { return TextLanguages(s.Texts) }

// TextRows returns the text rows for in-place editing.
func (s *Service) TextRows() *[]LocalizedText { return &s.Texts }

// CloneAs returns a copy of the service under header h, with all child rows re-keyed.
func (s Service) CloneAs(h Versioned) Service {
	s.Versioned = h
	s.Texts = cloneTexts(s.Texts, h.ID)
	return s
}

// Organization is one version of a public organization.
type Organization struct {
	Versioned
	TypeID       uuid.UUID       `json:"type_id"`
	BusinessCode string          `json:"business_code"`
	ParentID     uuid.NullUUID   `json:"parent_id"` // parent organization root
	Texts        []LocalizedText `json:"texts"`
	Phones       []Phone         `json:"phones"`
}

// Kind returns KindOrganization.
func (o *Organization) Kind() EntityKind { return KindOrganization }

// DeclaredLanguages returns the languages the organization has texts in.
func (o *Organization) DeclaredLanguages() []uuid.UUID { return TextLanguages(o.Texts) }

// TextRows returns the text rows for in-place editing.
func (o *Organization) TextRows() *[]LocalizedText { return &o.Texts }

// CloneAs returns a copy of the organization under header h, with all child rows re-keyed.
func (o Organization) CloneAs(h Versioned) Organization {
	o.Versioned = h
	o.Texts = cloneTexts(o.Texts, h.ID)
	o.Phones = clonePhones(o.Phones, h.ID)
	return o
}

// Channel is one version of a service channel (office, phone line, web page...).
type Channel struct {
	Versioned
	TypeID         uuid.UUID       `json:"type_id"`
	OrganizationID uuid.UUID       `json:"organization_id"` // organization root
	Texts          []LocalizedText `json:"texts"`
	Phones         []Phone         `json:"phones"`
	Hours          []ServiceHour   `json:"hours"`
}

// Kind returns KindChannel.
func (c *Channel) Kind() EntityKind { return KindChannel }

// DeclaredLanguages returns the languages the channel has texts in.
func (c *Channel) DeclaredLanguages() []uuid.UUID { return TextLanguages(c.Texts) }

// TextRows returns the text rows for in-place editing.
func (c *Channel) TextRows() *[]LocalizedText { return &c.Texts }

// CloneAs returns a copy of the channel under header h, with all child rows re-keyed.
func (c Channel) CloneAs(h Versioned) Channel {
	c.Versioned = h
	c.Texts = cloneTexts(c.Texts, h.ID)
	c.Phones = clonePhones(c.Phones, h.ID)
	c.Hours = cloneHours(c.Hours, h.ID)
	return c
}

// GeneralDescription is one version of a shared service description template.
type GeneralDescription struct {
	Versioned
	TypeID uuid.UUID       `json:"type_id"`
	Texts  []LocalizedText `json:"texts"`
}

// Kind returns KindGeneralDescription.
func (g *GeneralDescription) Kind() EntityKind { return KindGeneralDescription }

// DeclaredLanguages returns the languages the general description has texts in.
func (g *GeneralDescription) DeclaredLanguages() []uuid.UUID { return TextLanguages(g.Texts) }

// TextRows returns the text rows for in-place editing.
func (g *GeneralDescription) TextRows() *[]LocalizedText { return &g.Texts }

// CloneAs returns a copy of the general description under header h, with all child rows re-keyed.
func (g GeneralDescription) CloneAs(h Versioned) GeneralDescription {
	g.Versioned = h
	g.Texts = cloneTexts(g.Texts, h.ID)
	return g
}
