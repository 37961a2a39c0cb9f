// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/publishing"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

// Typed registries of the four entity kinds.
type (
	ServiceRegistry            = Registry[model.Service, *model.Service, viewmodel.Service, viewmodel.ServiceInput]
	OrganizationRegistry       = Registry[model.Organization, *model.Organization, viewmodel.Organization, viewmodel.OrganizationInput]
	ChannelRegistry            = Registry[model.Channel, *model.Channel, viewmodel.Channel, viewmodel.ChannelInput]
	GeneralDescriptionRegistry = Registry[model.GeneralDescription, *model.GeneralDescription, viewmodel.GeneralDescription, viewmodel.GeneralDescriptionInput]
)

// scheduledPublisher publishes due languages of one version.
type scheduledPublisher interface {
	publishScheduled(ctx context.Context, versionedID uuid.UUID, langs []uuid.UUID, now time.Time) error
}

// Registries holds the registry of every entity kind.
type Registries struct {
	Services            *ServiceRegistry
	Organizations       *OrganizationRegistry
	Channels            *ChannelRegistry
	GeneralDescriptions *GeneralDescriptionRegistry

	deps   Deps
	byKind map[model.EntityKind]scheduledPublisher
	logger *slog.Logger
}

// New builds the registries of all entity kinds. Every kind must have a
// reader and a writer in deps.Translators.
func New(deps Deps) (*Registries, error) {
	if deps.Open == nil || deps.Languages == nil || deps.Types == nil || deps.Translators == nil {
		return nil, errors.New("service: incomplete dependencies")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	var (
		rs  = &Registries{deps: deps, logger: deps.Logger}
		err error
	)
	rs.Services, err = newRegistry[model.Service, *model.Service](deps, serviceKind,
		func(v *viewmodel.Service) *viewmodel.Meta { return &v.Meta },
		func(in viewmodel.ServiceInput) viewmodel.InputHeader { return in.InputHeader })
	if err != nil {
		return nil, err
	}
	rs.Organizations, err = newRegistry[model.Organization, *model.Organization](deps, organizationKind,
		func(v *viewmodel.Organization) *viewmodel.Meta { return &v.Meta },
		func(in viewmodel.OrganizationInput) viewmodel.InputHeader { return in.InputHeader })
	if err != nil {
		return nil, err
	}
	rs.Channels, err = newRegistry[model.Channel, *model.Channel](deps, channelKind,
		func(v *viewmodel.Channel) *viewmodel.Meta { return &v.Meta },
		func(in viewmodel.ChannelInput) viewmodel.InputHeader { return in.InputHeader })
	if err != nil {
		return nil, err
	}
	rs.GeneralDescriptions, err = newRegistry[model.GeneralDescription, *model.GeneralDescription](deps, generalDescriptionKind,
		func(v *viewmodel.GeneralDescription) *viewmodel.Meta { return &v.Meta },
		func(in viewmodel.GeneralDescriptionInput) viewmodel.InputHeader { return in.InputHeader })
	if err != nil {
		return nil, err
	}

	rs.byKind = map[model.EntityKind]scheduledPublisher{
		model.KindService:            rs.Services,
		model.KindOrganization:       rs.Organizations,
		model.KindChannel:            rs.Channels,
		model.KindGeneralDescription: rs.GeneralDescriptions,
	}
	return rs, nil
}

type dueVersion struct {
	kind  model.EntityKind
	id    uuid.UUID
	langs []uuid.UUID
}

// PublishDue publishes every Draft language whose scheduled time has come.
// Versions are handled one by one; a failing version does not stop the
// others. It returns the number of versions handled successfully.
func (rs *Registries) PublishDue(ctx context.Context) (int, error) {
	now := rs.deps.now()

	work := rs.deps.Open()
	rows, err := publishing.Due(ctx, work, now)
	work.Discard()
	if err != nil {
		return 0, err
	}

	var due []*dueVersion
	index := make(map[uuid.UUID]*dueVersion)
	for _, row := range rows {
		d, ok := index[row.VersionedID]
		if !ok {
			d = &dueVersion{kind: row.Kind, id: row.VersionedID}
			index[row.VersionedID] = d
			due = append(due, d)
		}
		d.langs = append(d.langs, row.LanguageID)
	}

	var (
		done int
		errs []error
	)
	for _, d := range due {
		p, ok := rs.byKind[d.kind]
		if !ok {
			errs = append(errs, fmt.Errorf("scheduled version %s has unknown kind %q", d.id, d.kind))
			continue
		}
		if err := p.publishScheduled(ctx, d.id, d.langs, now); err != nil {
			rs.logger.Error("scheduled publishing failed",
				"kind", d.kind, "version_id", d.id, "error", err, "category", model.EventCategoryPublishing)
			errs = append(errs, err)
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}
