package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityAction tags one entry in a choice's append-only activity log.
type ActivityAction string

const (
	ActivityChoiceCreated   ActivityAction = "CHOICE_CREATED"
	ActivityChoiceUpdated   ActivityAction = "CHOICE_UPDATED"
	ActivityStatusChanged   ActivityAction = "CHOICE_STATUS_CHANGED"
	ActivityChoiceArchived  ActivityAction = "CHOICE_ARCHIVED"
	ActivityChoiceRestored  ActivityAction = "CHOICE_RESTORED"
	ActivityChoiceDeleted   ActivityAction = "CHOICE_DELETED"
	ActivityItemCreated     ActivityAction = "ITEM_CREATED"
	ActivityItemUpdated     ActivityAction = "ITEM_UPDATED"
	ActivityItemDeactivated ActivityAction = "ITEM_DEACTIVATED"
	ActivitySpendCreated    ActivityAction = "SPEND_CREATED"
)

// ActivityPayload is the typed payload attached to an activity record.
// Each action has its own payload shape; implementations are plain structs
// that marshal to the JSON stored alongside the action tag. Keeping the
// variants closed here keeps the activity trail itself type-safe.
type ActivityPayload interface {
	ActivityAction() ActivityAction
}

// ChoiceCreatedPayload accompanies ActivityChoiceCreated.
type ChoiceCreatedPayload struct {
	Name string `json:"name"`
}

func (ChoiceCreatedPayload) ActivityAction() ActivityAction { return ActivityChoiceCreated }

// ChoiceUpdatedPayload accompanies ActivityChoiceUpdated with a snapshot of
// the new metadata.
type ChoiceUpdatedPayload struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	EventAt     *time.Time `json:"event_at,omitempty"`
	Place       string     `json:"place,omitempty"`
}

func (ChoiceUpdatedPayload) ActivityAction() ActivityAction { return ActivityChoiceUpdated }

// StatusChangedPayload accompanies ActivityStatusChanged.
type StatusChangedPayload struct {
	Status   ChoiceStatus `json:"status"`
	Deadline *time.Time   `json:"deadline,omitempty"`
}

func (StatusChangedPayload) ActivityAction() ActivityAction { return ActivityStatusChanged }

// ChoiceArchivedPayload accompanies ActivityChoiceArchived.
type ChoiceArchivedPayload struct {
	Name string `json:"name"`
}

func (ChoiceArchivedPayload) ActivityAction() ActivityAction { return ActivityChoiceArchived }

// ChoiceRestoredPayload accompanies ActivityChoiceRestored.
type ChoiceRestoredPayload struct {
	Name string `json:"name"`
}

func (ChoiceRestoredPayload) ActivityAction() ActivityAction { return ActivityChoiceRestored }

// ChoiceDeletedPayload accompanies ActivityChoiceDeleted. It carries the
// choice name because the row no longer exists once the record is read.
type ChoiceDeletedPayload struct {
	Name string `json:"name"`
}

func (ChoiceDeletedPayload) ActivityAction() ActivityAction { return ActivityChoiceDeleted }

// ItemCreatedPayload accompanies ActivityItemCreated.
type ItemCreatedPayload struct {
	ItemID uuid.UUID `json:"item_id"`
	Name   string    `json:"name"`
	Type   ItemType  `json:"type"`
}

func (ItemCreatedPayload) ActivityAction() ActivityAction { return ActivityItemCreated }

// ItemUpdatedPayload accompanies ActivityItemUpdated.
type ItemUpdatedPayload struct {
	ItemID uuid.UUID `json:"item_id"`
	Name   string    `json:"name"`
}

func (ItemUpdatedPayload) ActivityAction() ActivityAction { return ActivityItemUpdated }

// ItemDeactivatedPayload accompanies ActivityItemDeactivated.
type ItemDeactivatedPayload struct {
	ItemID uuid.UUID `json:"item_id"`
	Name   string    `json:"name"`
}

func (ItemDeactivatedPayload) ActivityAction() ActivityAction { return ActivityItemDeactivated }

// SpendCreatedPayload accompanies ActivitySpendCreated, linking the derived
// spend and the allocation mode back to the originating choice.
type SpendCreatedPayload struct {
	SpendID uuid.UUID `json:"spend_id"`
	Mode    SpendMode `json:"mode"`
}

func (SpendCreatedPayload) ActivityAction() ActivityAction { return ActivitySpendCreated }

// AuditEvent is one entry for the trip-wide audit/event sink.
// Payload must marshal cleanly to JSON.
type AuditEvent struct {
	EntityKind string    `json:"entity_kind"`
	EntityID   uuid.UUID `json:"entity_id"`
	EventType  string    `json:"event_type"`
	ActorID    uuid.UUID `json:"actor_id"`
	Payload    any       `json:"payload"`
}
