package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, non-positive quantity).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the acting user is not allowed to perform
// the operation (e.g. a non-organizer changing choice status).
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// State-conflict errors. All map to HTTP 409.
var (
	// ErrChoiceClosed is returned when a selection is submitted or withdrawn
	// against a choice whose status is CLOSED.
	ErrChoiceClosed = errors.New("choice is closed")

	// ErrChoiceArchived is returned when any mutation other than restore is
	// attempted on an archived choice.
	ErrChoiceArchived = errors.New("choice is archived")

	// ErrDeadlinePassed is returned when a selection is submitted after the
	// choice's deadline.
	ErrDeadlinePassed = errors.New("selection deadline has passed")

	// ErrOptOutExists is returned when a second NO_PARTICIPATION item is
	// created on a choice that already has one.
	ErrOptOutExists = errors.New("choice already has an opt-out item")

	// ErrOptOutExclusive is returned when a submission combines the opt-out
	// item with any other line.
	ErrOptOutExclusive = errors.New("the opt-out item cannot be combined with other items")

	// ErrZeroSpendTotal is returned when spend derivation is attempted on a
	// choice whose item report has a zero grand total.
	ErrZeroSpendTotal = errors.New("cannot create spend with zero total")
)

// CapacityScope names which cap a CapacityError refers to.
type CapacityScope string

const (
	// CapacityPerUser means the item's max_per_user cap was exceeded.
	CapacityPerUser CapacityScope = "per_user"
	// CapacityTotal means the item's max_total cap was exceeded.
	CapacityTotal CapacityScope = "total"
)

// CapacityError reports a per-user or global quantity cap violation.
// It carries the item name and the numeric limit/current/requested values so
// callers can surface an actionable message verbatim.
type CapacityError struct {
	ItemName  string
	Scope     CapacityScope
	Limit     int
	Current   int // quantity already taken by other users (0 for per-user caps)
	Requested int
}

func (e *CapacityError) Error() string {
	if e.Scope == CapacityPerUser {
		return fmt.Sprintf("quantity %d of %q exceeds the per-user limit of %d",
			e.Requested, e.ItemName, e.Limit)
	}
	return fmt.Sprintf("%q is limited to %d: %d already taken, %d requested",
		e.ItemName, e.Limit, e.Current, e.Requested)
}

// InactiveItemError reports a line that references a deactivated item.
// This is a usability check: deactivated items simply stop being selectable.
type InactiveItemError struct {
	ItemName string
}

func (e *InactiveItemError) Error() string {
	return fmt.Sprintf("item %q is no longer active", e.ItemName)
}
