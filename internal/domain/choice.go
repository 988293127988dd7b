// Package domain contains the core data types for the group trip planner's
// choice engine. This package has no dependencies on other internal packages
// and is imported by every other one (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChoiceVisibility controls who can see a choice within its trip.
type ChoiceVisibility string

const (
	VisibilityTrip    ChoiceVisibility = "TRIP"
	VisibilityPrivate ChoiceVisibility = "PRIVATE"
)

// ChoiceStatus is the lifecycle state of a choice.
// Only OPEN choices accept selections.
type ChoiceStatus string

const (
	ChoiceOpen   ChoiceStatus = "OPEN"
	ChoiceClosed ChoiceStatus = "CLOSED"
)

// Choice is a group decision container, e.g. a shared food order or a poll.
// It is the top-level aggregate; items and selections belong to a choice.
type Choice struct {
	ID          uuid.UUID        `json:"id"`
	TripID      uuid.UUID        `json:"trip_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	EventAt     *time.Time       `json:"event_at,omitempty"`
	Place       string           `json:"place,omitempty"`
	Visibility  ChoiceVisibility `json:"visibility"`
	Status      ChoiceStatus     `json:"status"`
	Deadline    *time.Time       `json:"deadline,omitempty"`
	CreatedBy   uuid.UUID        `json:"created_by"`
	ArchivedAt  *time.Time       `json:"archived_at,omitempty"` // nil unless soft-deleted
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Archived reports whether the choice has been soft-deleted.
// Archived choices reject every mutation except restore.
func (c Choice) Archived() bool {
	return c.ArchivedAt != nil
}

// AcceptsSelections returns nil when a selection may be submitted against the
// choice at the given instant, or the state-conflict error explaining why not.
func (c Choice) AcceptsSelections(now time.Time) error {
	if c.Archived() {
		return ErrChoiceArchived
	}
	if c.Status == ChoiceClosed {
		return ErrChoiceClosed
	}
	if c.Deadline != nil && now.After(*c.Deadline) {
		return ErrDeadlinePassed
	}
	return nil
}

// ChoiceListFilter selects which choices a trip listing returns.
// Zero value lists open, non-archived choices only.
type ChoiceListFilter struct {
	IncludeArchived bool
	IncludeClosed   bool
}
