// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translators

import (
	"cmp"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/servreg-go/internal/model"
	"github.com/olegiv/servreg-go/internal/reconcile"
	"github.com/olegiv/servreg-go/internal/resolution"
	"github.com/olegiv/servreg-go/internal/translate"
	"github.com/olegiv/servreg-go/internal/uow"
	"github.com/olegiv/servreg-go/internal/viewmodel"
)

// phoneReconciler reconciles the phones of the active language. Phones of
// other languages are never touched. WithKeep merges instead of replacing.
func phoneReconciler[E any, PE entity[E]](rows func(*E) *[]model.Phone, mode reconcile.Mode) translate.Reconciler[E, model.Phone, viewmodel.PhoneInput] {
	return translate.Reconciler[E, model.Phone, viewmodel.PhoneInput]{
		Rows: rows,
		Spec: func(r *translate.Run, dst *E) (reconcile.Spec[model.Phone, viewmodel.PhoneInput], error) {
			owner := PE(dst).Header().ID
			lang := r.ActiveLanguage
			order := 0
			return reconcile.Spec[model.Phone, viewmodel.PhoneInput]{
				Owned: func(p model.Phone) bool { return p.LanguageID == lang },
				Identity: func(in viewmodel.PhoneInput) resolution.Identity[model.Phone] {
					return resolution.Identity[model.Phone]{
						AssignedKey: in.ID,
						KeyOf:       func(p model.Phone) uuid.UUID { return p.ID },
						Predicate: resolution.All(
							resolution.Equal(func(p model.Phone) string { return p.PrefixNumber }, in.PrefixNumber),
							resolution.Equal(func(p model.Phone) string { return p.Number }, in.Number),
						),
					}
				},
				Apply: func(in viewmodel.PhoneInput, existing *model.Phone) (model.Phone, error) {
					p := model.Phone{ID: uuid.New(), OwnerID: owner, LanguageID: lang}
					if existing != nil {
						p = *existing
					}
					if in.Number == "" {
						return p, &translate.ValidationError{Field: "phones.number", Reason: "required"}
					}
					p.Number = sanitizePlain(in.Number)
					p.PrefixNumber = sanitizePlain(in.PrefixNumber)
					p.AdditionalInformation = sanitizePlain(in.AdditionalInformation)
					p.ChargeTypeID = uuid.NullUUID{}
					if in.ChargeType != "" {
						id, err := r.TypeID(model.TypeGroupPhoneChargeType, in.ChargeType)
						if err != nil {
							return p, err
						}
						p.ChargeTypeID = uuid.NullUUID{UUID: id, Valid: true}
					}
					p.OrderNumber = order
					order++
					p.ModifiedAt = r.Now
					return p, nil
				},
				Mode: mode,
			}, nil
		},
		Repo: func(r *translate.Run) uow.Repository[model.Phone] {
			var zero E
			return r.Work.Phones(PE(&zero).Kind())
		},
	}
}

// phonesRead returns the phones of the best available language.
func phonesRead[E, V any](rows func(E) []model.Phone, set func(*V, []viewmodel.Phone)) translate.Step[E, V] {
	return func(r *translate.Run, src E, dst *V) error {
		var phones []model.Phone
		pick := translate.LocalizedSet(rows, func(p model.Phone) uuid.UUID { return p.LanguageID },
			func(_ *V, rows []model.Phone) { phones = rows })
		if err := pick(r, src, dst); err != nil {
			return err
		}

		out := make([]viewmodel.Phone, 0, len(phones))
		for _, p := range phones {
			v := viewmodel.Phone{
				ID:                    p.ID,
				Number:                p.Number,
				PrefixNumber:          p.PrefixNumber,
				AdditionalInformation: p.AdditionalInformation,
				Language:              r.LanguageCode(p.LanguageID),
			}
			if p.ChargeTypeID.Valid {
				v.ChargeType = r.TypeCode(p.ChargeTypeID.UUID)
			}
			out = append(out, v)
		}
		set(dst, out)
		return nil
	}
}

// hourReconciler reconciles the hours of one hour type. Hours of other types
// share the table and are never touched.
func hourReconciler(hourType string) translate.Reconciler[model.Channel, model.ServiceHour, viewmodel.ServiceHour] {
	return translate.Reconciler[model.Channel, model.ServiceHour, viewmodel.ServiceHour]{
		Rows: func(c *model.Channel) *[]model.ServiceHour { return &c.Hours },
		Spec: func(r *translate.Run, dst *model.Channel) (reconcile.Spec[model.ServiceHour, viewmodel.ServiceHour], error) {
			typeID, err := r.TypeID(model.TypeGroupServiceHour, hourType)
			if err != nil {
				return reconcile.Spec[model.ServiceHour, viewmodel.ServiceHour]{}, err
			}
			owner := dst.ID
			order := 0
			return reconcile.Spec[model.ServiceHour, viewmodel.ServiceHour]{
				Owned: func(h model.ServiceHour) bool { return h.HourTypeID == typeID },
				Identity: func(in viewmodel.ServiceHour) resolution.Identity[model.ServiceHour] {
					return resolution.Identity[model.ServiceHour]{
						AssignedKey: in.ID,
						KeyOf:       func(h model.ServiceHour) uuid.UUID { return h.ID },
						Predicate: resolution.All(
							resolution.Equal(func(h model.ServiceHour) int { return h.Weekday }, in.Weekday),
							resolution.Equal(func(h model.ServiceHour) string { return h.Opens }, in.Opens),
							func(h model.ServiceHour) bool { return sameDay(h.ValidFrom, in.ValidFrom) },
						),
					}
				},
				Apply: func(in viewmodel.ServiceHour, existing *model.ServiceHour) (model.ServiceHour, error) {
					h := model.ServiceHour{ID: uuid.New(), OwnerID: owner, HourTypeID: typeID}
					if existing != nil {
						h = *existing
					}
					if err := validateHour(in); err != nil {
						return h, err
					}
					h.Weekday = in.Weekday
					h.Opens, h.Closes = in.Opens, in.Closes
					h.IsClosed = in.IsClosed
					h.ValidFrom, h.ValidTo = in.ValidFrom, in.ValidTo
					h.OrderNumber = order
					order++
					h.ModifiedAt = r.Now
					return h, nil
				},
				Mode: reconcile.WithRemove,
			}, nil
		},
		Repo: func(r *translate.Run) uow.Repository[model.ServiceHour] { return r.Work.ChannelHours() },
	}
}

func validateHour(h viewmodel.ServiceHour) error {
	if h.Weekday < 0 || h.Weekday > 6 {
		return &translate.ValidationError{Field: "hours.weekday", Reason: "must be 0..6"}
	}
	if h.IsClosed {
		return nil
	}
	opens, err := time.Parse("15:04", h.Opens)
	if err != nil {
		return &translate.ValidationError{Field: "hours.opens", Reason: "must be HH:MM"}
	}
	closes, err := time.Parse("15:04", h.Closes)
	if err != nil {
		return &translate.ValidationError{Field: "hours.closes", Reason: "must be HH:MM"}
	}
	if !closes.After(opens) {
		return &translate.ValidationError{Field: "hours.closes", Reason: "must be after opens"}
	}
	if h.ValidFrom != nil && h.ValidTo != nil && h.ValidTo.Before(*h.ValidFrom) {
		return &translate.ValidationError{Field: "hours.valid_to", Reason: "must not be before valid_from"}
	}
	return nil
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// hoursRead returns a read step listing the hours of one type in weekday order.
func hoursRead[V any](tc *translate.Context, hourType string, set func(*V, []viewmodel.ServiceHour)) (translate.Step[model.Channel, V], error) {
	typeID, err := tc.TypeID(model.TypeGroupServiceHour, hourType)
	if err != nil {
		return nil, err
	}
	return translate.Collection(
		func(c model.Channel) []model.ServiceHour { return c.Hours },
		func(_ *translate.Run, h model.ServiceHour) (viewmodel.ServiceHour, error) {
			return viewmodel.ServiceHour{
				ID:        h.ID,
				Weekday:   h.Weekday,
				Opens:     h.Opens,
				Closes:    h.Closes,
				IsClosed:  h.IsClosed,
				ValidFrom: h.ValidFrom,
				ValidTo:   h.ValidTo,
			}, nil
		},
		set,
		translate.List[model.ServiceHour]{
			Where: func(h model.ServiceHour) bool { return h.HourTypeID == typeID },
			Order: func(a, b model.ServiceHour) int {
				return cmp.Or(cmp.Compare(a.Weekday, b.Weekday), cmp.Compare(a.OrderNumber, b.OrderNumber))
			},
		},
	), nil
}
