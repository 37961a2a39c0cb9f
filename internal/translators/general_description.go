// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translators

import (
	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/translate"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

// GeneralDescription translates general descriptions.
type GeneralDescription struct{}

// Read implements translate.Reader.
func (GeneralDescription) Read(tc *translate.Context, g model.GeneralDescription) (viewmodel.GeneralDescription, error) {
	return translate.Define[model.GeneralDescription, viewmodel.GeneralDescription](tc).Steps(
		meta[model.GeneralDescription, viewmodel.GeneralDescription](func(v *viewmodel.GeneralDescription) *viewmodel.Meta { return &v.Meta }),
		describe[model.GeneralDescription, viewmodel.GeneralDescription](func(v *viewmodel.GeneralDescription) *viewmodel.DescriptionFields { return &v.DescriptionFields }),
		typeName(func(g model.GeneralDescription) uuid.UUID { return g.TypeID }, func(v *viewmodel.GeneralDescription, code string) { v.Type = code }),
	).Translate(g)
}

// Write implements translate.Writer.
func (GeneralDescription) Write(tc *translate.Context, in viewmodel.GeneralDescriptionInput, t translate.Target[model.GeneralDescription]) (model.GeneralDescription, error) {
	def := versionTarget(
		translate.Define[viewmodel.GeneralDescriptionInput, model.GeneralDescription](tc), t,
		func(in viewmodel.GeneralDescriptionInput) viewmodel.InputHeader { return in.InputHeader },
		func(h model.Versioned) model.GeneralDescription { return model.GeneralDescription{Versioned: h} },
	)
	return def.Steps(
		typeCode(model.TypeGroupGeneralDescType, func(in viewmodel.GeneralDescriptionInput) string { return in.Type },
			func(g *model.GeneralDescription) *uuid.UUID { return &g.TypeID }),
		redescribe[viewmodel.GeneralDescriptionInput, model.GeneralDescription](func(in viewmodel.GeneralDescriptionInput) viewmodel.DescriptionInput { return in.DescriptionInput }),
		requireName[viewmodel.GeneralDescriptionInput, model.GeneralDescription](),
	).Persist(tc.Work.GeneralDescriptions()).GetFinal(in)
}
