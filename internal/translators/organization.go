// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translators

import (
	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/reconcile"
	"github.com/olegiv/servreg-go/internal/translate"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

// Organization translates organizations.
type Organization struct{}

// Read implements translate.Reader.
func (Organization) Read(tc *translate.Context, o model.Organization) (viewmodel.Organization, error) {
	return translate.Define[model.Organization, viewmodel.Organization](tc).Steps(
		meta[model.Organization, viewmodel.Organization](func(v *viewmodel.Organization) *viewmodel.Meta { return &v.Meta }),
		describe[model.Organization, viewmodel.Organization](func(v *viewmodel.Organization) *viewmodel.DescriptionFields { return &v.DescriptionFields }),
		typeName(func(o model.Organization) uuid.UUID { return o.TypeID }, func(v *viewmodel.Organization, code string) { v.Type = code }),
		translate.Simple(func(o model.Organization) string { return o.BusinessCode },
			func(v *viewmodel.Organization, code string) { v.BusinessCode = code }),
		translate.Simple(func(o model.Organization) *uuid.UUID { return refPtr(o.ParentID) },
			func(v *viewmodel.Organization, id *uuid.UUID) { v.ParentID = id }),
		phonesRead(func(o model.Organization) []model.Phone { return o.Phones },
			func(v *viewmodel.Organization, phones []viewmodel.Phone) { v.Phones = phones }),
	).Translate(o)
}

// Write implements translate.Writer.
func (Organization) Write(tc *translate.Context, in viewmodel.OrganizationInput, t translate.Target[model.Organization]) (model.Organization, error) {
	mode := reconcile.WithRemove
	if in.MergePhones {
		mode = reconcile.WithKeep
	}

	def := versionTarget(
		translate.Define[viewmodel.OrganizationInput, model.Organization](tc), t,
		func(in viewmodel.OrganizationInput) viewmodel.InputHeader { return in.InputHeader },
		func(h model.Versioned) model.Organization { return model.Organization{Versioned: h} },
	)
	return def.Steps(
		typeCode(model.TypeGroupOrganization, func(in viewmodel.OrganizationInput) string { return in.Type },
			func(o *model.Organization) *uuid.UUID { return &o.TypeID }),
		translate.Simple(func(in viewmodel.OrganizationInput) *string { return in.BusinessCode },
			func(o *model.Organization, code *string) {
				if code != nil {
					o.BusinessCode = sanitizePlain(*code)
				}
			}),
		reference(func(in viewmodel.OrganizationInput) *uuid.UUID { return in.ParentID },
			func(o *model.Organization) *uuid.NullUUID { return &o.ParentID }),
		parentNotSelf(),
		redescribe[viewmodel.OrganizationInput, model.Organization](func(in viewmodel.OrganizationInput) viewmodel.DescriptionInput { return in.DescriptionInput }),
		requireName[viewmodel.OrganizationInput, model.Organization](),
		translate.Reconciled(func(in viewmodel.OrganizationInput) []viewmodel.PhoneInput { return in.Phones },
			phoneReconciler[model.Organization](func(o *model.Organization) *[]model.Phone { return &o.Phones }, mode)),
	).Persist(tc.Work.Organizations()).GetFinal(in)
}

func parentNotSelf() translate.Step[viewmodel.OrganizationInput, model.Organization] {
	return func(_ *translate.Run, _ viewmodel.OrganizationInput, o *model.Organization) error {
		if o.ParentID.Valid && o.ParentID.UUID == o.UnificRootID {
			return &translate.ValidationError{Field: "parent_id", Reason: "an organization cannot be its own parent"}
		}
		return nil
	}
}
