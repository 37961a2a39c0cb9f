// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translators

import (
	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/translate"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

// Register adds the readers and writers of every entity kind to reg.
func Register(reg *translate.Registry) {
	translate.RegisterReader[model.Service, viewmodel.Service](reg, Service{})
	translate.RegisterWriter[model.Service, viewmodel.ServiceInput](reg, Service{})

	translate.RegisterReader[model.Organization, viewmodel.Organization](reg, Organization{})
	translate.RegisterWriter[model.Organization, viewmodel.OrganizationInput](reg, Organization{})

	translate.RegisterReader[model.Channel, viewmodel.Channel](reg, Channel{})
	translate.RegisterWriter[model.Channel, viewmodel.ChannelInput](reg, Channel{})

	translate.RegisterReader[model.GeneralDescription, viewmodel.GeneralDescription](reg, GeneralDescription{})
	translate.RegisterWriter[model.GeneralDescription, viewmodel.GeneralDescriptionInput](reg, GeneralDescription{})
}

// NewRegistry returns a registry with every translator registered.
func NewRegistry() *translate.Registry {
	reg := translate.NewRegistry()
	Register(reg)
	return reg
}
