// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translators

import (
	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/translate"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

// Service translates services.
type Service struct{}

// Read implements translate.Reader.
func (Service) Read(tc *translate.Context, s model.Service) (viewmodel.Service, error) {
	return translate.Define[model.Service, viewmodel.Service](tc).Steps(
		meta[model.Service, viewmodel.Service](func(v *viewmodel.Service) *viewmodel.Meta { return &v.Meta }),
		describe[model.Service, viewmodel.Service](func(v *viewmodel.Service) *viewmodel.DescriptionFields { return &v.DescriptionFields }),
		typeName(func(s model.Service) uuid.UUID { return s.TypeID }, func(v *viewmodel.Service, code string) { v.Type = code }),
		translate.Simple(func(s model.Service) *uuid.UUID { return refPtr(s.OrganizationID) },
			func(v *viewmodel.Service, id *uuid.UUID) { v.OrganizationID = id }),
		translate.Simple(func(s model.Service) *uuid.UUID { return refPtr(s.GeneralDescriptionID) },
			func(v *viewmodel.Service, id *uuid.UUID) { v.GeneralDescriptionID = id }),
		translate.Navigation(
			func(s model.Service) (model.GeneralDescription, bool) {
				if s.GeneralDescription == nil {
					return model.GeneralDescription{}, false
				}
				return *s.GeneralDescription, true
			},
			generalDescriptionSummary,
			func(v *viewmodel.Service, gd viewmodel.GeneralDescriptionSummary) { v.GeneralDescription = &gd },
		),
	).Translate(s)
}

// Write implements translate.Writer.
func (Service) Write(tc *translate.Context, in viewmodel.ServiceInput, t translate.Target[model.Service]) (model.Service, error) {
	def := versionTarget(
		translate.Define[viewmodel.ServiceInput, model.Service](tc), t,
		func(in viewmodel.ServiceInput) viewmodel.InputHeader { return in.InputHeader },
		func(h model.Versioned) model.Service { return model.Service{Versioned: h} },
	)
	return def.Steps(
		typeCode(model.TypeGroupService, func(in viewmodel.ServiceInput) string { return in.Type },
			func(s *model.Service) *uuid.UUID { return &s.TypeID }),
		reference(func(in viewmodel.ServiceInput) *uuid.UUID { return in.OrganizationID },
			func(s *model.Service) *uuid.NullUUID { return &s.OrganizationID }),
		reference(func(in viewmodel.ServiceInput) *uuid.UUID { return in.GeneralDescriptionID },
			func(s *model.Service) *uuid.NullUUID { return &s.GeneralDescriptionID }),
		redescribe[viewmodel.ServiceInput, model.Service](func(in viewmodel.ServiceInput) viewmodel.DescriptionInput { return in.DescriptionInput }),
		requireName[viewmodel.ServiceInput, model.Service](),
	).Persist(tc.Work.Services()).GetFinal(in)
}

// generalDescriptionSummary is the definition of a general description
// embedded in a service.
func generalDescriptionSummary(tc *translate.Context) *translate.Definition[model.GeneralDescription, viewmodel.GeneralDescriptionSummary] {
	rows := texts[model.GeneralDescription]
	return translate.Define[model.GeneralDescription, viewmodel.GeneralDescriptionSummary](tc).Steps(
		translate.Simple(func(g model.GeneralDescription) uuid.UUID { return g.UnificRootID },
			func(v *viewmodel.GeneralDescriptionSummary, id uuid.UUID) { v.ID = id }),
		translate.LocalizedValue(rows, nameText, func(v *viewmodel.GeneralDescriptionSummary, s string) { v.Name = s }),
		translate.LocalizedValue(rows, summaryText, func(v *viewmodel.GeneralDescriptionSummary, s string) { v.Summary = s }),
		translate.LocalizedValue(rows, descriptionText, func(v *viewmodel.GeneralDescriptionSummary, s string) { v.Description = s }),
	)
}
