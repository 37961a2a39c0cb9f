// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/uow"
)

// Kind binds an entity kind to its tables.
type Kind[E any] struct {
	Kind model.EntityKind

	table func(uow.UnitOfWork) uow.Repository[E]
	// children loads the child rows of an entity.
	children func(ctx context.Context, work uow.UnitOfWork, e *E) error
	// stage adds an entity and its child rows.
	stage func(work uow.UnitOfWork, e E)
	// hide drops the child rows of languages keep rejects.
	hide func(e *E, keep func(uuid.UUID) bool)
	// related loads the entities a read model embeds; may be nil.
	related func(ctx context.Context, work uow.UnitOfWork, e *E, published bool) error
	// embeddedIn lists the kinds whose read models embed this kind.
	embeddedIn []model.EntityKind
}

// byID loads one version with its child rows.
func (k Kind[E]) byID(ctx context.Context, work uow.UnitOfWork, id uuid.UUID) (E, error) {
	e, err := k.table(work).Get(ctx, id)
	if err != nil {
		return e, err
	}
	if err := k.children(ctx, work, &e); err != nil {
		return e, err
	}
	return e, nil
}

// byVersioning loads the version stored under a versioning row.
func (k Kind[E]) byVersioning(ctx context.Context, work uow.UnitOfWork, versioningID uuid.UUID) (E, error) {
	var zero E
	rows, err := k.table(work).List(ctx, uow.Eq("versioning_id", versioningID))
	if err != nil {
		return zero, err
	}
	switch len(rows) {
	case 0:
		return zero, fmt.Errorf("%s of version %s: %w", k.Kind, versioningID, ErrNotFound)
	case 1:
	default:
		return zero, fmt.Errorf("%d %s rows share version %s", len(rows), k.Kind, versioningID)
	}
	e := rows[0]
	if err := k.children(ctx, work, &e); err != nil {
		return zero, err
	}
	return e, nil
}

// versions lists every version of a root without child rows.
func (k Kind[E]) versions(ctx context.Context, work uow.UnitOfWork, rootID uuid.UUID) ([]E, error) {
	return k.table(work).List(ctx, uow.Eq("unific_root_id", rootID))
}

func loadTexts(ctx context.Context, work uow.UnitOfWork, kind model.EntityKind, owner uuid.UUID) ([]model.LocalizedText, error) {
	rows, err := work.Texts(kind).List(ctx, uow.Eq("owner_id", owner))
	if err != nil {
		return nil, fmt.Errorf("loading %s texts: %w", kind, err)
	}
	return rows, nil
}

func loadPhones(ctx context.Context, work uow.UnitOfWork, kind model.EntityKind, owner uuid.UUID) ([]model.Phone, error) {
	rows, err := work.Phones(kind).List(ctx, uow.Eq("owner_id", owner))
	if err != nil {
		return nil, fmt.Errorf("loading %s phones: %w", kind, err)
	}
	return rows, nil
}

func stageTexts(work uow.UnitOfWork, kind model.EntityKind, rows []model.LocalizedText) {
	repo := work.Texts(kind)
	for _, t := range rows {
		repo.Add(t)
	}
}

func stagePhones(work uow.UnitOfWork, kind model.EntityKind, rows []model.Phone) {
	repo := work.Phones(kind)
	for _, p := range rows {
		repo.Add(p)
	}
}

func keepTexts(rows []model.LocalizedText, keep func(uuid.UUID) bool) []model.LocalizedText {
	return slices.DeleteFunc(slices.Clone(rows), func(t model.LocalizedText) bool { return !keep(t.LanguageID) })
}

func keepPhones(rows []model.Phone, keep func(uuid.UUID) bool) []model.Phone {
	return slices.DeleteFunc(slices.Clone(rows), func(p model.Phone) bool { return !keep(p.LanguageID) })
}

var generalDescriptionKind = Kind[model.GeneralDescription]{
	Kind:  model.KindGeneralDescription,
	table: uow.UnitOfWork.GeneralDescriptions,
	children: func(ctx context.Context, work uow.UnitOfWork, g *model.GeneralDescription) error {
		var err error
		g.Texts, err = loadTexts(ctx, work, model.KindGeneralDescription, g.ID)
		return err
	},
	stage: func(work uow.UnitOfWork, g model.GeneralDescription) {
		work.GeneralDescriptions().Add(g)
		stageTexts(work, model.KindGeneralDescription, g.Texts)
	},
	hide: func(g *model.GeneralDescription, keep func(uuid.UUID) bool) {
		g.Texts = keepTexts(g.Texts, keep)
	},
	embeddedIn: []model.EntityKind{model.KindService},
}

var serviceKind = Kind[model.Service]{
	Kind:  model.KindService,
	table: uow.UnitOfWork.Services,
	children: func(ctx context.Context, work uow.UnitOfWork, s *model.Service) error {
		var err error
		s.Texts, err = loadTexts(ctx, work, model.KindService, s.ID)
		return err
	},
	stage: func(work uow.UnitOfWork, s model.Service) {
		work.Services().Add(s)
		stageTexts(work, model.KindService, s.Texts)
	},
	hide: func(s *model.Service, keep func(uuid.UUID) bool) {
		s.Texts = keepTexts(s.Texts, keep)
	},
	related: func(ctx context.Context, work uow.UnitOfWork, s *model.Service, published bool) error {
		if !s.GeneralDescriptionID.Valid {
			return nil
		}
		gd, _, rows, err := pick(ctx, work, generalDescriptionKind, s.GeneralDescriptionID.UUID, published, uuid.Nil)
		switch {
		case err == nil:
		case isNotFound(err):
			// an unpublished or deleted general description is not shown
			return nil
		default:
			return err
		}
		gd.Texts = keepTexts(gd.Texts, visible(rows, published))
		s.GeneralDescription = &gd
		return nil
	},
}

var organizationKind = Kind[model.Organization]{
	Kind:  model.KindOrganization,
	table: uow.UnitOfWork.Organizations,
	children: func(ctx context.Context, work uow.UnitOfWork, o *model.Organization) error {
		var err error
		if o.Texts, err = loadTexts(ctx, work, model.KindOrganization, o.ID); err != nil {
			return err
		}
		o.Phones, err = loadPhones(ctx, work, model.KindOrganization, o.ID)
		return err
	},
	stage: func(work uow.UnitOfWork, o model.Organization) {
		work.Organizations().Add(o)
		stageTexts(work, model.KindOrganization, o.Texts)
		stagePhones(work, model.KindOrganization, o.Phones)
	},
	hide: func(o *model.Organization, keep func(uuid.UUID) bool) {
		o.Texts = keepTexts(o.Texts, keep)
		o.Phones = keepPhones(o.Phones, keep)
	},
}

var channelKind = Kind[model.Channel]{
	Kind:  model.KindChannel,
	table: uow.UnitOfWork.Channels,
	children: func(ctx context.Context, work uow.UnitOfWork, c *model.Channel) error {
		var err error
		if c.Texts, err = loadTexts(ctx, work, model.KindChannel, c.ID); err != nil {
			return err
		}
		if c.Phones, err = loadPhones(ctx, work, model.KindChannel, c.ID); err != nil {
			return err
		}
		c.Hours, err = work.ChannelHours().List(ctx, uow.Eq("owner_id", c.ID))
		if err != nil {
			return fmt.Errorf("loading channel hours: %w", err)
		}
		return nil
	},
	stage: func(work uow.UnitOfWork, c model.Channel) {
		work.Channels().Add(c)
		stageTexts(work, model.KindChannel, c.Texts)
		stagePhones(work, model.KindChannel, c.Phones)
		hours := work.ChannelHours()
		for _, h := range c.Hours {
			hours.Add(h)
		}
	},
	hide: func(c *model.Channel, keep func(uuid.UUID) bool) {
		c.Texts = keepTexts(c.Texts, keep)
		c.Phones = keepPhones(c.Phones, keep)
	},
}
