// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// PublishingStatus is the publishing state of one language of a versioned entity.
type PublishingStatus string

// Publishing statuses
const (
	StatusDraft        PublishingStatus = "draft"
	StatusPublished    PublishingStatus = "published"
	StatusDeleted      PublishingStatus = "deleted"
	StatusOldPublished PublishingStatus = "old_published" // archived by a newer published version
	StatusRemoved      PublishingStatus = "removed"
)

// AllStatuses lists every known publishing status.
var AllStatuses = []PublishingStatus{
	StatusDraft,
	StatusPublished,
	StatusDeleted,
	StatusOldPublished,
	StatusRemoved,
}

// Valid returns true if s is a known status.
func (s PublishingStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsAvailable returns true if a language in this status can be shown through fallback.
func (s PublishingStatus) IsAvailable() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusOldPublished:
		return true
	default:
		return false
	}
}

// IsClosed returns true if a version holding a language in this status
// must not be edited in place anymore.
func (s PublishingStatus) IsClosed() bool {
	switch s {
	case StatusPublished, StatusOldPublished, StatusDeleted:
		return true
	default:
		return false
	}
}

// aggregatePriority orders statuses for AggregateStatus; lower wins.
var aggregatePriority = map[PublishingStatus]int{
	StatusPublished:    0,
	StatusDraft:        1,
	StatusOldPublished: 2,
	StatusDeleted:      3,
	StatusRemoved:      4,
}

// AggregateStatus derives the status of a whole versioned entity from its
// per-language rows. An entity without rows is a draft.
func AggregateStatus(rows []LanguageAvailability) PublishingStatus {
	if len(rows) == 0 {
		return StatusDraft
	}
	best := rows[0].Status
	for _, row := range rows[1:] {
		if aggregatePriority[row.Status] < aggregatePriority[best] {
			best = row.Status
		}
	}
	return best
}
