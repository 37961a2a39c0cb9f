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

// Channel translates service channels.
type Channel struct{}

// Read implements translate.Reader.
func (Channel) Read(tc *translate.Context, c model.Channel) (viewmodel.Channel, error) {
	standard, err := hoursRead(tc, model.ServiceHourStandard, func(v *viewmodel.Channel, h []viewmodel.ServiceHour) { v.StandardHours = h })
	if err != nil {
		return viewmodel.Channel{}, err
	}
	exception, err := hoursRead(tc, model.ServiceHourException, func(v *viewmodel.Channel, h []viewmodel.ServiceHour) { v.ExceptionHours = h })
	if err != nil {
		return viewmodel.Channel{}, err
	}
	special, err := hoursRead(tc, model.ServiceHourSpecial, func(v *viewmodel.Channel, h []viewmodel.ServiceHour) { v.SpecialHours = h })
	if err != nil {
		return viewmodel.Channel{}, err
	}

	return translate.Define[model.Channel, viewmodel.Channel](tc).Steps(
		meta[model.Channel, viewmodel.Channel](func(v *viewmodel.Channel) *viewmodel.Meta { return &v.Meta }),
		describe[model.Channel, viewmodel.Channel](func(v *viewmodel.Channel) *viewmodel.DescriptionFields { return &v.DescriptionFields }),
		typeName(func(c model.Channel) uuid.UUID { return c.TypeID }, func(v *viewmodel.Channel, code string) { v.Type = code }),
		translate.Simple(func(c model.Channel) uuid.UUID { return c.OrganizationID },
			func(v *viewmodel.Channel, id uuid.UUID) { v.OrganizationID = id }),
		phonesRead(func(c model.Channel) []model.Phone { return c.Phones },
			func(v *viewmodel.Channel, phones []viewmodel.Phone) { v.Phones = phones }),
		standard,
		exception,
		special,
	).Translate(c)
}

// Write implements translate.Writer. Standard, exception and special hours
// are reconciled separately although they share one table.
func (Channel) Write(tc *translate.Context, in viewmodel.ChannelInput, t translate.Target[model.Channel]) (model.Channel, error) {
	def := versionTarget(
		translate.Define[viewmodel.ChannelInput, model.Channel](tc), t,
		func(in viewmodel.ChannelInput) viewmodel.InputHeader { return in.InputHeader },
		func(h model.Versioned) model.Channel { return model.Channel{Versioned: h} },
	)
	return def.Steps(
		typeCode(model.TypeGroupChannel, func(in viewmodel.ChannelInput) string { return in.Type },
			func(c *model.Channel) *uuid.UUID { return &c.TypeID }),
		organization(),
		redescribe[viewmodel.ChannelInput, model.Channel](func(in viewmodel.ChannelInput) viewmodel.DescriptionInput { return in.DescriptionInput }),
		requireName[viewmodel.ChannelInput, model.Channel](),
		translate.Reconciled(func(in viewmodel.ChannelInput) []viewmodel.PhoneInput { return in.Phones },
			phoneReconciler[model.Channel](func(c *model.Channel) *[]model.Phone { return &c.Phones }, reconcile.WithRemove)),
		translate.Reconciled(func(in viewmodel.ChannelInput) []viewmodel.ServiceHour { return in.StandardHours },
			hourReconciler(model.ServiceHourStandard)),
		translate.Reconciled(func(in viewmodel.ChannelInput) []viewmodel.ServiceHour { return in.ExceptionHours },
			hourReconciler(model.ServiceHourException)),
		translate.Reconciled(func(in viewmodel.ChannelInput) []viewmodel.ServiceHour { return in.SpecialHours },
			hourReconciler(model.ServiceHourSpecial)),
	).Persist(tc.Work.Channels()).GetFinal(in)
}

// organization sets the owning organization, which every channel must have.
func organization() translate.Step[viewmodel.ChannelInput, model.Channel] {
	return func(_ *translate.Run, in viewmodel.ChannelInput, c *model.Channel) error {
		if in.OrganizationID != nil {
			c.OrganizationID = *in.OrganizationID
		}
		if c.OrganizationID == uuid.Nil {
			return &translate.ValidationError{Field: "organization_id", Reason: "required"}
		}
		return nil
	}
}
